// Package textgen produces marketing copy and size recommendations through a
// generative text endpoint. Failures never reach the caller: they turn into the
// prompt's fallback text, tagged as such in the returned domain.Generation.
package textgen

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

type Generator struct {
	transport   port.TextTransport
	logger      *zap.Logger
	maxAttempts int
	baseDelay   time.Duration
	newTimer    func() backoff.Timer
}

type Option func(*Generator)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithTimer replaces the timer used to wait between attempts.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(g *Generator) {
		g.newTimer = newTimer
	}
}

// WithBaseDelay sets the delay before the second attempt; each further delay doubles.
func WithBaseDelay(d time.Duration) Option {
	return func(g *Generator) {
		g.baseDelay = d
	}
}

func NewGenerator(transport port.TextTransport, opts ...Option) *Generator {
	g := &Generator{
		transport:   transport,
		logger:      zap.NewNop(),
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate renders the prompt with params and asks the transport for a completion.
// Transport errors are retried with delays of baseDelay, 2*baseDelay, ...
// A reply without text is not retried.
func (g *Generator) Generate(ctx context.Context, prompt Prompt, params any) domain.Generation {
	text, err := prompt.Render(params)
	if err != nil {
		g.logger.Error("render prompt", zap.String("prompt", prompt.Name), zap.Error(err))
		return domain.Fallback(prompt.Fallback)
	}

	var (
		attempt int
		reply   string
	)

	operation := func() error {
		attempt++

		out, err := g.transport.Generate(ctx, text)
		if err != nil {
			g.logger.Warn("text generation attempt failed",
				zap.String("prompt", prompt.Name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}

		reply = out
		return nil
	}

	var timer backoff.Timer
	if g.newTimer != nil {
		timer = g.newTimer()
	}

	if err := backoff.RetryNotifyWithTimer(operation, g.policy(ctx), nil, timer); err != nil {
		g.logger.Warn("text generation gave up",
			zap.String("prompt", prompt.Name),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return domain.Fallback(prompt.Fallback)
	}

	if reply == "" {
		g.logger.Debug("reply has no text", zap.String("prompt", prompt.Name))
		return domain.Fallback(prompt.Fallback)
	}

	return domain.Generated(reply)
}

func (g *Generator) Slogan(ctx context.Context, productName string) domain.Generation {
	return g.Generate(ctx, SloganPrompt, SloganParams{ProductName: productName})
}

func (g *Generator) SizeRecommendation(ctx context.Context, params SizeParams) domain.Generation {
	return g.Generate(ctx, SizePrompt, params)
}

func (g *Generator) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.baseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = g.baseDelay << g.maxAttempts
	b.MaxElapsedTime = 0

	retries := g.maxAttempts - 1
	if retries < 0 {
		retries = 0
	}

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}
