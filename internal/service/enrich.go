package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"talk_enricher/internal/domain"
)

// EnrichService runs one enrichment end to end: load, pipeline, sink, then
// bookkeeping. runState, publisher and metrics are optional.
type EnrichService struct {
	source    Source
	enricher  Enricher
	sink      DocumentSink
	runState  RunStateStore
	txManager TransactionManager
	publisher Publisher
	metrics   MetricsRecorder
	logger    *slog.Logger
}

func NewEnrichService(
	source Source,
	enricher Enricher,
	sink DocumentSink,
	runState RunStateStore,
	txManager TransactionManager,
	publisher Publisher,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *EnrichService {
	return &EnrichService{
		source:    source,
		enricher:  enricher,
		sink:      sink,
		runState:  runState,
		txManager: txManager,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With("source", source.ID()),
	}
}

func (s *EnrichService) Run(ctx context.Context) (stats *domain.EnrichStats, err error) {
	startTime := time.Now()
	runID := uuid.NewString()

	if s.metrics != nil {
		defer func() { s.metrics.ObserveRun(stats, err) }()
	}

	logger := s.logger.With("run_id", runID)
	logger.Info("starting enrichment", "source_name", s.source.Name())

	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	res, err := s.enricher.Run(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	stats = &res.Stats
	stats.RunID = runID
	stats.SourceID = s.source.ID()

	written, err := s.sink.Write(ctx, res.Documents)
	if err != nil {
		return nil, fmt.Errorf("write documents: %w", err)
	}
	stats.Written = written
	stats.Duration = time.Since(startTime)

	if s.runState != nil {
		if err := s.updateRunState(ctx, stats); err != nil {
			return stats, fmt.Errorf("update run state: %w", err)
		}
	}

	// The documents are already written; a lost notification does not fail the run.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, stats); err != nil {
			logger.Error("failed to publish run", "error", err)
		}
	}

	logger.Info("enrichment completed",
		"talks", stats.Talks,
		"documents", stats.Documents,
		"written", stats.Written,
		"dangling_related", stats.DanglingRelated,
		"duplicate_related", stats.DuplicateRelated,
		"duplicate_ids", stats.DuplicateIDs,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *EnrichService) updateRunState(ctx context.Context, stats *domain.EnrichStats) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		state, err := s.runState.Get(txCtx, stats.SourceID)
		if err != nil {
			return err
		}

		state.SourceID = stats.SourceID
		state.LastRunAt = time.Now()
		state.LastRunID = stats.RunID
		state.LastDocumentCount = int64(stats.Written)
		state.TotalRuns++

		return s.runState.Update(txCtx, state)
	})
}
