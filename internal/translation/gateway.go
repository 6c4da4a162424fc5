package translation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	From string
	To   string
	// MaxConcurrent caps simultaneous engine calls; < 1 means runtime.NumCPU().
	MaxConcurrent int
	// Timeout bounds one engine call; zero disables it.
	Timeout time.Duration
	// MaxRetries is how many times a timed-out call is retried.
	MaxRetries int
	// RetryInterval is the first backoff delay; zero uses the backoff default.
	RetryInterval time.Duration
}

// Response is the outcome of one gateway call.
type Response struct {
	Text        string
	Diagnostics string
	Attempts    int
	Duration    time.Duration
}

// Gateway serializes access to the engine behind a counting admission gate.
type Gateway struct {
	engine Engine
	sem    *semaphore.Weighted
	cfg    GatewayConfig
}

// NewGateway wraps engine with the admission gate described by cfg.
func NewGateway(engine Engine, cfg GatewayConfig) *Gateway {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = runtime.NumCPU()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Gateway{
		engine: engine,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		cfg:    cfg,
	}
}

// Capacity returns the number of engine calls allowed at once.
func (g *Gateway) Capacity() int {
	return g.cfg.MaxConcurrent
}

// Translate sends one blob to the engine and waits for the full answer.
// Callers block until a slot is free. An empty blob is answered locally.
func (g *Gateway) Translate(ctx context.Context, blob string) (Response, error) {
	if blob == "" {
		return Response{}, nil
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return Response{}, fmt.Errorf("acquire engine slot: %w", err)
	}
	defer g.sem.Release(1)

	start := time.Now()
	var resp Response
	op := func() error {
		resp.Attempts++
		attemptCtx, cancel := g.attemptContext(ctx)
		defer cancel()

		res, err := g.engine.Translate(attemptCtx, blob, g.cfg.From, g.cfg.To)
		resp.Text, resp.Diagnostics = res.Text, res.Diagnostics
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrEngineTimeout, g.cfg.Timeout)
		}
		return backoff.Permanent(err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.MaxElapsedTime = 0
	if g.cfg.RetryInterval > 0 {
		eb.InitialInterval = g.cfg.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(g.cfg.MaxRetries)), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", resp.Attempts).Dur("backoff", wait).Msg("Retrying engine call")
	})
	resp.Duration = time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return resp, ctx.Err()
		}
		if errors.Is(err, ErrEngineTimeout) {
			return resp, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
		return resp, err
	}

	log.Debug().
		Int("bytes_in", len(blob)).
		Int("bytes_out", len(resp.Text)).
		Int("attempts", resp.Attempts).
		Dur("took", resp.Duration).
		Msg("Engine call complete")
	return resp, nil
}

func (g *Gateway) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.cfg.Timeout)
}
