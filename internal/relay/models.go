package relay

import (
	"context"
	"time"

	"github.com/i474232898/gag-stock-relay/internal/render"
	"github.com/i474232898/gag-stock-relay/internal/stock"
	"github.com/i474232898/gag-stock-relay/internal/weather"
)

// RunRecord is the outcome of one relay run.
type RunRecord struct {
	ID         string              `json:"id"`
	StartedAt  time.Time           `json:"startedAt"` // always UTC
	FinishedAt time.Time           `json:"finishedAt"`
	Weather    weather.Observation `json:"weather"`
	Units      int                 `json:"units"`
	Omitted    int                 `json:"omitted"`
	Published  bool                `json:"published"`
	Error      string              `json:"error,omitempty"`
}

// Source abstracts the upstream game API.
type Source interface {
	FetchSnapshot(ctx context.Context) (stock.Snapshot, error)
	FetchWeatherProbe(ctx context.Context) (weather.Observation, error)
}

// Publisher abstracts the delivery channel.
type Publisher interface {
	Publish(ctx context.Context, msg render.Message) error
	NotifyError(ctx context.Context, text string) error
}

// Store is the contract the run history store must satisfy. Runs only write
// to it.
type Store interface {
	SaveRun(rec RunRecord)
	GetLatest() (RunRecord, error)
	GetRange(from, to time.Time) ([]RunRecord, error)
}
