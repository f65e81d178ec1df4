package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"talk_enricher/internal/domain"
	"talk_enricher/internal/pipeline"
)

type Source interface {
	ID() string
	Name() string
	Load(ctx context.Context) (*domain.Dataset, error)
}

type Enricher interface {
	Run(ctx context.Context, ds *domain.Dataset) (*pipeline.Result, error)
}

type DocumentSink interface {
	Write(ctx context.Context, docs []domain.Document) (int, error)
}

type RunStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.RunState, error)
	Update(ctx context.Context, state *domain.RunState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, stats *domain.EnrichStats) error
	Close() error
}

type MetricsRecorder interface {
	ObserveRun(stats *domain.EnrichStats, err error)
}
