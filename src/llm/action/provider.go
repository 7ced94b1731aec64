package action

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"minebot/src/model"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

const DefaultTimeout = 10 * time.Second

// Decision is the outcome of one Decide call. Suggestion is always valid.
// Err is set when a live answer was attempted and the fallback menu had to
// be used instead.
type Decision struct {
	Suggestion model.ActionSuggestion `json:"suggestion"`
	Source     model.DecisionSource   `json:"source"`
	Err        error                  `json:"-"`
}

// Options configures a Provider.
type Options struct {
	BotName  string
	Server   string
	Fallback []model.ActionSuggestion
	Timeout  time.Duration
	Logger   zerolog.Logger
}

// Provider turns a situation and a goal into an action suggestion.
type Provider struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	botName  string
	server   string
	fallback []model.ActionSuggestion
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewProvider creates a provider. A nil chat model puts the provider in
// fallback-only mode.
func NewProvider(ctx context.Context, chatModel einomodel.BaseChatModel, opts Options) (*Provider, error) {
	if len(opts.Fallback) == 0 {
		return nil, errors.New("fallback menu cannot be empty")
	}
	for i, s := range opts.Fallback {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid fallback %d: %w", i, err)
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	p := &Provider{
		botName:  opts.BotName,
		server:   opts.Server,
		fallback: append([]model.ActionSuggestion(nil), opts.Fallback...),
		timeout:  opts.Timeout,
		logger:   opts.Logger,
	}

	if chatModel == nil {
		return p, nil
	}

	// Template → ChatModel
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(createActionTemplate()).
		AppendChatModel(chatModel).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating action chain: %w", err)
	}
	p.chain = chain
	return p, nil
}

// HasModel reports whether live decisions are possible
func (p *Provider) HasModel() bool {
	return p.chain != nil
}

// Decide returns a suggestion for the situation. It never fails: without a
// model, or when the model call or its answer is unusable, a random entry of
// the fallback menu is returned. No retries are made within one call.
func (p *Provider) Decide(ctx context.Context, situation, goal string) Decision {
	if p.chain == nil {
		return Decision{Suggestion: p.Fallback(), Source: model.SourceFallback}
	}

	start := time.Now()
	suggestion, err := p.ask(ctx, situation, goal)
	if err != nil {
		p.logFailure(ctx, err, situation)
		return Decision{Suggestion: p.Fallback(), Source: model.SourceFallback, Err: err}
	}

	p.logger.Debug().
		Str("action", string(suggestion.Action)).
		Dur("elapsed", time.Since(start)).
		Msg("Action model answered")
	return Decision{Suggestion: suggestion, Source: model.SourceLLM}
}

func (p *Provider) ask(ctx context.Context, situation, goal string) (model.ActionSuggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.chain.Invoke(ctx, templateVars(p.botName, p.server, situation, goal))
	if err != nil {
		return model.ActionSuggestion{}, fmt.Errorf("error generating action: %w", err)
	}
	if out == nil {
		return model.ActionSuggestion{}, fmt.Errorf("%w: empty message", ErrMalformedUpstream)
	}
	return ParseSuggestion(out.Content)
}

// logFailure logs rejected replies and failed calls at different levels.
func (p *Provider) logFailure(ctx context.Context, err error, situation string) {
	switch {
	case ctx.Err() != nil:
		p.logger.Debug().Err(err).Msg("Action model call cancelled")
	case errors.Is(err, ErrMalformedUpstream):
		p.logger.Warn().Err(err).Str("situation", situation).Str("reason", "malformed").Msg("Action model reply rejected, using fallback")
	default:
		p.logger.Error().Err(err).Str("situation", situation).Str("reason", "call_failed").Msg("Action model call failed, using fallback")
	}
}

// Fallback picks a uniformly random entry of the fallback menu
func (p *Provider) Fallback() model.ActionSuggestion {
	return p.fallback[rand.IntN(len(p.fallback))]
}
