package action

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"minebot/src/model"

	"github.com/bytedance/sonic"
)

const MaxResponseLength = 4000

// ErrMalformedUpstream marks a model answer that is not a single valid suggestion object.
var ErrMalformedUpstream = errors.New("malformed upstream response")

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

// ParseSuggestion decodes a model answer into a suggestion. The answer must
// be exactly one JSON object with the suggestion fields, optionally wrapped
// in a single Markdown code fence. Prose around the object is rejected.
func ParseSuggestion(content string) (model.ActionSuggestion, error) {
	var s model.ActionSuggestion

	if len(content) > MaxResponseLength {
		return s, fmt.Errorf("%w: response too long: %d characters (max: %d)", ErrMalformedUpstream, len(content), MaxResponseLength)
	}
	if !utf8.ValidString(content) {
		return s, fmt.Errorf("%w: invalid UTF-8", ErrMalformedUpstream)
	}

	body := stripCodeFence(strings.TrimSpace(content))
	if body == "" {
		return s, fmt.Errorf("%w: empty response", ErrMalformedUpstream)
	}
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return s, fmt.Errorf("%w: response is not a JSON object", ErrMalformedUpstream)
	}
	if !strictJSON.Valid([]byte(body)) {
		return s, fmt.Errorf("%w: response is not valid JSON", ErrMalformedUpstream)
	}

	if err := strictJSON.UnmarshalFromString(body, &s); err != nil {
		return model.ActionSuggestion{}, fmt.Errorf("%w: %v", ErrMalformedUpstream, err)
	}

	s.Reason = strings.TrimSpace(s.Reason)
	s.ChatMessage = strings.TrimSpace(s.ChatMessage)
	if err := s.Validate(); err != nil {
		return model.ActionSuggestion{}, fmt.Errorf("%w: %v", ErrMalformedUpstream, err)
	}
	return s, nil
}

// stripCodeFence removes one surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := strings.TrimSuffix(s[3:], "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang := strings.TrimSpace(inner[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}
