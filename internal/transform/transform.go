// Package transform sends a built prompt to the model and returns its
// cleaned-up answer.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/restyle/internal/cache"
	"github.com/hyperifyio/restyle/internal/llm"
)

// Result is the sanitized model output for one transformation.
type Result struct {
	Text string `json:"text"`
}

// TransformError reports a failed transformation. Msg carries the upstream
// message; callers must surface it and keep previous output untouched.
type TransformError struct {
	Msg string
	Err error
}

func (e *TransformError) Error() string { return "transformation failed: " + e.Msg }

func (e *TransformError) Unwrap() error { return e.Err }

var (
	// ErrBusy is returned while another transformation is in flight.
	ErrBusy = errors.New("a transformation is already in progress")
	// ErrEmptyResponse marks a model answer with no usable text.
	ErrEmptyResponse = errors.New("model returned no usable text")
)

// Client runs one transformation at a time against a Generator.
type Client struct {
	Generator llm.Generator
	// Timeout bounds each call; zero means no client-side bound.
	Timeout time.Duration
	// Cache, when set, serves repeated prompts. Model and the generator's
	// scope, when it has one, are part of every key.
	Cache *cache.LLMCache
	Model string

	inFlight atomic.Bool
}

// Busy reports whether a transformation is running.
func (c *Client) Busy() bool { return c.inFlight.Load() }

// Transform blocks until the model answers or the call fails. There is no
// retry: a failure is reported once as a *TransformError.
func (c *Client) Transform(ctx context.Context, prompt string) (Result, error) {
	if c.Generator == nil {
		return Result{}, &TransformError{Msg: "no generator configured", Err: errors.New("generator not configured")}
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer c.inFlight.Store(false)

	if c.Cache != nil {
		if text, ok := c.Cache.GetText(ctx, c.Model, c.cacheText(prompt)); ok {
			log.Debug().Int("chars", len(text)).Msg("transformation served from cache")
			return Result{Text: text}, nil
		}
	}

	callCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	start := time.Now()
	raw, err := c.Generator.Generate(callCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Result{}, &TransformError{Msg: fmt.Sprintf("model did not answer within %s", c.Timeout), Err: err}
		}
		return Result{}, &TransformError{Msg: err.Error(), Err: err}
	}
	text := StripFences(raw)
	if strings.TrimSpace(text) == "" {
		return Result{}, &TransformError{Msg: ErrEmptyResponse.Error(), Err: ErrEmptyResponse}
	}
	log.Debug().Int("promptChars", len(prompt)).Int("chars", len(text)).Dur("took", time.Since(start)).Msg("transformation complete")

	if c.Cache != nil {
		if err := c.Cache.SaveText(ctx, c.Model, c.cacheText(prompt), text); err != nil {
			log.Warn().Err(err).Msg("cache save failed")
		}
	}
	return Result{Text: text}, nil
}

func (c *Client) cacheText(prompt string) string {
	if sg, ok := c.Generator.(llm.Scoped); ok {
		return sg.CacheScope() + "\n\n" + prompt
	}
	return prompt
}
