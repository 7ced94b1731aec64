package model

import (
	"errors"
	"fmt"
	"strings"
)

// ActionKind is one of the moves the model may suggest
type ActionKind string

const (
	ActionExplore ActionKind = "explore"
	ActionMine    ActionKind = "mine"
	ActionBuild   ActionKind = "build"
	ActionCraft   ActionKind = "craft"
	ActionHunt    ActionKind = "hunt"
	ActionTrade   ActionKind = "trade"
	ActionChat    ActionKind = "chat"
)

// ActionKinds lists every valid kind with the short description used in prompts
var ActionKinds = []struct {
	Kind        ActionKind
	Description string
}{
	{ActionExplore, "Move around and discover the world"},
	{ActionMine, "Dig for ores and resources"},
	{ActionBuild, "Build structures"},
	{ActionCraft, "Craft items and tools"},
	{ActionHunt, "Hunt animals or mobs"},
	{ActionTrade, "Trade with villagers or players"},
	{ActionChat, "Talk in the server chat"},
}

// Valid reports whether k is a known action kind
func (k ActionKind) Valid() bool {
	for _, a := range ActionKinds {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// ActionSuggestion is the decision produced for one cycle
type ActionSuggestion struct {
	Action      ActionKind `json:"action" yaml:"action"`
	Reason      string     `json:"reason" yaml:"reason"`
	ChatMessage string     `json:"chat_message" yaml:"chat_message"`
}

// Validate checks the suggestion against the action schema
func (s ActionSuggestion) Validate() error {
	if s.Action == "" {
		return errors.New("action is required")
	}
	if !s.Action.Valid() {
		return fmt.Errorf("unknown action %q", s.Action)
	}
	if strings.TrimSpace(s.Reason) == "" {
		return errors.New("reason is required")
	}
	return nil
}

// DecisionSource tells where a suggestion came from
type DecisionSource string

const (
	SourceLLM      DecisionSource = "llm"
	SourceFallback DecisionSource = "fallback"
)
