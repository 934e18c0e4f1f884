package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/gag-stock-relay/internal/render"
	"github.com/i474232898/gag-stock-relay/internal/transport"
	"github.com/i474232898/gag-stock-relay/internal/weather"
)

// notifyTimeout bounds the best-effort error notification.
const notifyTimeout = 10 * time.Second

// Options control rendering.
type Options struct {
	MaxItemsPerCategory int
	Limits              render.Limits
}

// Service runs the fetch, reconcile, render, compose and publish pipeline.
type Service struct {
	source    Source
	publisher Publisher
	store     Store
	opts      Options
	logger    *slog.Logger

	// mu serializes runs so a manual trigger never overlaps a scheduled one.
	mu  sync.Mutex
	now func() time.Time
}

// NewService creates a new Service. store may be nil.
func NewService(source Source, publisher Publisher, store Store, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:    source,
		publisher: publisher,
		store:     store,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one invocation. On any fatal error it makes exactly one
// best-effort attempt to post an error notice, then returns the original
// error.
func (s *Service) Run(ctx context.Context) (RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := RunRecord{ID: uuid.NewString(), StartedAt: s.now()}
	logger := s.logger.With(slog.String("run_id", rec.ID))
	logger.Info("relay: run started")

	msg, w, err := s.build(ctx)
	rec.Weather = w
	if err == nil {
		rec.Units = len(msg.Units)
		rec.Omitted = msg.Omitted
		err = s.publisher.Publish(ctx, msg)
	}

	if err != nil {
		rec.Error = err.Error()
		s.notify(ctx, logger, err)
		logger.Error("relay: run failed",
			slog.String("error", err.Error()),
			slog.Bool("rate_limited", errors.Is(err, transport.ErrRateLimited)))
	} else {
		rec.Published = true
		logger.Info("relay: run published",
			slog.String("weather", w.Type),
			slog.Int("units", rec.Units),
			slog.Int("omitted", rec.Omitted),
			slog.Int("length", msg.Len()))
	}

	rec.FinishedAt = s.now()
	if s.store != nil {
		s.store.SaveRun(rec)
	}
	return rec, err
}

// Preview builds the message exactly like Run but does not publish it.
func (s *Service) Preview(ctx context.Context) (render.Message, error) {
	msg, _, err := s.build(ctx)
	return msg, err
}

// build fetches the snapshot and the probe in that order and renders them.
func (s *Service) build(ctx context.Context) (render.Message, weather.Observation, error) {
	snap, err := s.source.FetchSnapshot(ctx)
	if err != nil {
		return render.Message{}, weather.Observation{}, err
	}
	probe, err := s.source.FetchWeatherProbe(ctx)
	if err != nil {
		return render.Message{}, weather.Observation{}, err
	}

	now := s.now()
	w := weather.Reconcile(&probe, snap.Weather, snap.History, now)

	budget := s.opts.Limits.MaxUnitLength
	if budget <= 0 {
		budget = math.MaxInt
	}
	blocks := render.RenderStock(snap, s.opts.MaxItemsPerCategory, budget)
	header := render.RenderHeader(w, blocks, now)
	return render.Compose(header, blocks, s.opts.Limits), w, nil
}

// notify posts the error notice; its own failure is only logged.
func (s *Service) notify(ctx context.Context, logger *slog.Logger, cause error) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	text := fmt.Sprintf("Grow-a-Garden bot error: `%v`", cause)
	if err := s.publisher.NotifyError(nctx, text); err != nil {
		logger.Warn("relay: error notification failed", slog.String("error", err.Error()))
	}
}
