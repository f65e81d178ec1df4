package postgres

import (
	"context"
	"fmt"

	"talk_enricher/internal/domain"
)

const (
	SourceID   = "postgres"
	SourceName = "Postgres staging tables"
)

// Source loads a Dataset from the staging tables in a single snapshot.
type Source struct {
	talks *TalkStore
	tx    *TransactionManager
}

func NewSource(talks *TalkStore, tx *TransactionManager) *Source {
	return &Source{talks: talks, tx: tx}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

func (s *Source) Load(ctx context.Context) (*domain.Dataset, error) {
	var ds domain.Dataset

	err := s.tx.WithSnapshot(ctx, func(ctx context.Context) error {
		var err error
		if ds.Talks, err = s.talks.ListTalks(ctx); err != nil {
			return fmt.Errorf("list talks: %w", err)
		}
		if ds.Details, err = s.talks.ListDetails(ctx); err != nil {
			return fmt.Errorf("list details: %w", err)
		}
		if ds.Tags, err = s.talks.ListTags(ctx); err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		if ds.Images, err = s.talks.ListImages(ctx); err != nil {
			return fmt.Errorf("list images: %w", err)
		}
		if ds.Related, err = s.talks.ListRelated(ctx); err != nil {
			return fmt.Errorf("list related videos: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ds, nil
}
