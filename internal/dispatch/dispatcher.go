package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nativex/ai-router/internal/metrics"
	"github.com/nativex/ai-router/internal/persona"
	"github.com/nativex/ai-router/internal/provider"
)

const (
	// DefaultModel is used when neither the command nor the configuration names one.
	DefaultModel = "gpt-4o-mini"

	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinMaxTokens   = 32
	MaxMaxTokens   = 4000
)

// Limiter admits or denies work for an opaque key.
type Limiter interface {
	Check(key string) bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDefaultProvider sets the provider used when a command names none.
func WithDefaultProvider(name string) Option {
	return func(d *Dispatcher) {
		d.defaultProvider = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithDefaultModel sets the model used when a command names none.
func WithDefaultModel(model string) Option {
	return func(d *Dispatcher) {
		if model != "" {
			d.defaultModel = model
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r *metrics.Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRequestID replaces the request id generator.
func WithRequestID(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// Dispatcher routes commands to providers. It holds no mutable state of its
// own and is safe for concurrent use.
type Dispatcher struct {
	registry *provider.Registry
	limiter  Limiter
	catalog  *persona.Catalog
	recorder *metrics.Recorder
	logger   *slog.Logger

	defaultProvider string
	defaultModel    string

	newID func() string
}

// New creates a Dispatcher over an already populated registry and catalog.
func New(registry *provider.Registry, limiter Limiter, catalog *persona.Catalog, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:     registry,
		limiter:      limiter,
		catalog:      catalog,
		logger:       slog.Default(),
		defaultModel: DefaultModel,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Route executes one command. It never returns an error; every failure is
// reported as an Outcome kind.
//
// The backend call runs on a context detached from ctx's cancellation, so a
// caller that gives up does not abort the in-flight request.
func (d *Dispatcher) Route(ctx context.Context, cmd Command) Outcome {
	out := d.route(ctx, cmd)
	d.recorder.ObserveDispatch(out.Provider, string(out.Kind))
	return out
}

func (d *Dispatcher) route(ctx context.Context, cmd Command) Outcome {
	if strings.TrimSpace(cmd.Prompt) == "" {
		return Outcome{Kind: KindInvalidRequest, Body: MsgEmptyPrompt}
	}

	name := d.resolveProvider(cmd.Provider)
	impl, ok := d.registry.Get(name)
	if name == "" || !ok {
		d.logger.Info("unknown provider requested",
			slog.String("provider", name),
			slog.String("origin", cmd.Origin),
		)
		return Outcome{
			Kind: KindUnknownProvider,
			Body: MsgUnknownProvider + strings.Join(d.registry.Sorted(), ", "),
		}
	}

	roleKey, systemPrompt := d.catalog.Resolve(cmd.Role)

	if !d.limiter.Check(cmd.Origin) {
		d.recorder.ObserveRateLimited()
		d.logger.Info("origin rate limited",
			slog.String("origin", cmd.Origin),
			slog.String("provider", name),
		)
		return Outcome{Kind: KindRateLimited, Provider: name, Body: MsgRateLimited}
	}

	if cmd.Deferrer != nil {
		if err := cmd.Deferrer.Defer(ctx, cmd.Public); err != nil {
			d.logger.Warn("failed to defer command",
				slog.String("origin", cmd.Origin),
				slog.String("error", err.Error()),
			)
		}
	}

	model := cmd.Model
	if model == "" {
		model = d.defaultModel
	}
	requestID := d.newID()

	req := provider.PromptRequest{
		Prompt:       cmd.Prompt,
		Model:        model,
		Temperature:  clamp(cmd.Temperature, MinTemperature, MaxTemperature),
		MaxTokens:    clamp(cmd.MaxTokens, MinMaxTokens, MaxMaxTokens),
		SystemPrompt: systemPrompt,
		Metadata: map[string]any{
			"user_id":    cmd.UserID,
			"channel_id": cmd.Origin,
			"role":       roleKey,
			"provider":   name,
			"request_id": requestID,
		},
	}

	start := time.Now()
	resp, err := impl.Complete(context.WithoutCancel(ctx), req)
	latency := time.Since(start)
	d.recorder.ObserveProviderLatency(name, latency)

	base := Outcome{Provider: name, Model: model, Persona: roleKey, RequestID: requestID}

	if err != nil {
		var pe *provider.ProviderError
		if errors.As(err, &pe) {
			d.logger.Warn("provider returned an error",
				slog.String("provider", name),
				slog.String("model", model),
				slog.String("request_id", requestID),
				slog.Int("status", pe.StatusCode),
				slog.String("error", pe.Message),
			)
			base.Kind = KindProviderError
			base.Body = MsgProviderError + pe.Message
			return base
		}

		d.logger.Error("unexpected provider failure",
			slog.String("provider", name),
			slog.String("model", model),
			slog.String("request_id", requestID),
			slog.Duration("latency", latency),
			slog.String("error", err.Error()),
		)
		base.Kind = KindUnexpectedFailure
		base.Body = MsgUnexpectedFailure
		return base
	}

	body, attachment := shapeText(resp.Text)
	out := base
	out.Kind = KindSuccess
	out.Title = title(name, model)
	out.Body = body
	out.Attachment = attachment
	out.UsageSummary = summarizeUsage(resp.Usage)
	out.Public = cmd.Public

	if cmd.Thread {
		if cmd.Public {
			out.OpenThread = true
			out.ThreadName = threadName(cmd.UserName)
		} else {
			out.Kind = KindThreadNotPermitted
			out.Advisory = MsgThreadNotPermitted
		}
	}

	d.logger.Info("dispatch completed",
		slog.String("provider", name),
		slog.String("model", model),
		slog.String("role", roleKey),
		slog.String("request_id", requestID),
		slog.Duration("latency", latency),
		slog.Bool("truncated", attachment != nil),
	)
	return out
}

// resolveProvider picks the explicit name, then the configured default, then
// the first registered provider.
func (d *Dispatcher) resolveProvider(requested string) string {
	if name := strings.ToLower(strings.TrimSpace(requested)); name != "" {
		return name
	}
	if d.defaultProvider != "" {
		return d.defaultProvider
	}
	return d.registry.First()
}

// Providers returns the registered provider names in sorted order.
func (d *Dispatcher) Providers() []string {
	return d.registry.Sorted()
}

// Personas returns the persona keys in sorted order.
func (d *Dispatcher) Personas() []string {
	return d.catalog.Keys()
}
