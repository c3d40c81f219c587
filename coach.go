// Package interviewcoach provides a high-level façade over the interview
// engine and its services. Most applications interact with it by:
//  1. Creating a Coach via New() (optionally overriding config or stores)
//  2. Starting a session with an intake profile
//  3. Calling Step with the candidate's messages until the session is done
//  4. Fetching the transcript document for persistence
//
// The façade delegates orchestration to engine.Engine while keeping setup
// ergonomics concise. Defaults are safe for local development and testing.
package interviewcoach

import (
	"context"
	"fmt"

	"interviewcoach/collab"
	"interviewcoach/collab/anthropic"
	"interviewcoach/collab/gemini"
	"interviewcoach/collab/openai"
	"interviewcoach/core"
	"interviewcoach/engine"
	"interviewcoach/logging"
	"interviewcoach/session"
	"interviewcoach/transcript"
)

// clientPoolSize bounds how many configured collaborator clients are kept.
const clientPoolSize = 16

// Options configures the Coach instance.
type Options struct {
	// Collab is the provider configuration for collaborator clients.
	Collab collab.Config

	// Engine tunes the turn pipeline (stop words, turn limit).
	Engine engine.Config

	// Store holds sessions (defaults to in-memory if nil).
	Store session.Store

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Coach is the high-level façade aggregating the engine and its services.
type Coach struct {
	opts   Options
	engine *engine.Engine
	store  session.Store
	pool   *collab.Pool
}

// New creates a Coach with optional overrides. Any unset service is
// initialized with an in-memory or default implementation.
func New(optFns ...func(o *Options)) (*Coach, error) {
	opts := Options{
		Collab: collab.DefaultConfig(),
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Engine.Logger == nil {
		opts.Engine.Logger = opts.Logger
	}

	pool, err := collab.NewPool(clientPoolSize, buildClient(opts.Collab))
	if err != nil {
		return nil, err
	}

	// All collaborators share the configured provider. The pool keeps this
	// cheap and makes per-concern model overrides a pool-key change.
	client, err := pool.Get(context.Background(), collab.Key{
		Provider: opts.Collab.Provider,
		Model:    providerModel(opts.Collab),
	})
	if err != nil {
		pool.Purge()
		return nil, err
	}
	wrapped := collab.WithRetry(client, opts.Collab.Retry)

	eng := engine.New(engine.Collaborators{
		Planner:     wrapped,
		Observer:    wrapped,
		Interviewer: wrapped,
		Expert:      wrapped,
		Reporter:    wrapped,
	}, opts.Engine)

	return &Coach{opts: opts, engine: eng, store: opts.Store, pool: pool}, nil
}

// StartSession validates the intake and registers a new session, returning
// its ID.
func (c *Coach) StartSession(intake core.IntakeProfile) (string, error) {
	sess, err := c.store.Create(intake)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Step advances the named session with the candidate's newest message
// (empty for the opening step).
func (c *Coach) Step(ctx context.Context, sessionID, message string) (engine.StepResult, error) {
	sess, err := c.store.Get(sessionID)
	if err != nil {
		return engine.StepResult{}, err
	}
	return c.engine.Step(ctx, sess, message)
}

// Transcript builds and validates the persisted transcript document for a
// session.
func (c *Coach) Transcript(sessionID string) (transcript.Document, error) {
	sess, err := c.store.Get(sessionID)
	if err != nil {
		return transcript.Document{}, err
	}
	doc := transcript.Build(sess)
	if err := transcript.Validate(doc); err != nil {
		return transcript.Document{}, err
	}
	return doc, nil
}

// Close releases pooled collaborator clients.
func (c *Coach) Close() {
	c.pool.Purge()
}

// buildClient returns the pool build function for the given configuration.
func buildClient(cfg collab.Config) collab.BuildFunc {
	return func(ctx context.Context, key collab.Key) (collab.Client, error) {
		switch key.Provider {
		case "openai":
			return openai.New(func(o *openai.Options) {
				o.Model = key.Model
				o.Temperature = key.Temperature
				o.APIKey = cfg.OpenAI.APIKey
				o.BaseURL = cfg.OpenAI.BaseURL
			}), nil
		case "anthropic":
			return anthropic.New(func(o *anthropic.Options) {
				o.Model = key.Model
				o.Temperature = key.Temperature
				o.APIKey = cfg.Anthropic.APIKey
			}), nil
		case "gemini":
			return gemini.New(ctx, func(o *gemini.Options) {
				o.Model = key.Model
				o.Temperature = key.Temperature
				o.APIKey = cfg.Gemini.APIKey
			})
		case "mock":
			return collab.NewMockClient(), nil
		default:
			return nil, fmt.Errorf("unknown collaborator provider %q", key.Provider)
		}
	}
}

func providerModel(cfg collab.Config) string {
	switch cfg.Provider {
	case "anthropic":
		return cfg.Anthropic.Model
	case "gemini":
		return cfg.Gemini.Model
	default:
		return cfg.OpenAI.Model
	}
}
