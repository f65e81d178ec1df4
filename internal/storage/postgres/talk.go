package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"talk_enricher/internal/domain"
)

// TalkStore reads the staging tables. Queries run inside the transaction
// carried by ctx, if any.
type TalkStore struct {
	db *sqlx.DB
}

func NewTalkStore(db *sqlx.DB) *TalkStore {
	return &TalkStore{db: db}
}

func (s *TalkStore) ListTalks(ctx context.Context) ([]domain.Talk, error) {
	var rows []domain.Talk
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		`SELECT id, title, speaker, video_url FROM talks`)
	return rows, err
}

func (s *TalkStore) ListDetails(ctx context.Context) ([]domain.Detail, error) {
	var rows []domain.Detail
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		`SELECT id_ref, internal_id, description, duration, published_at FROM talk_details`)
	return rows, err
}

func (s *TalkStore) ListTags(ctx context.Context) ([]domain.TagLink, error) {
	var rows []domain.TagLink
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		`SELECT id_ref, tag FROM talk_tags`)
	return rows, err
}

func (s *TalkStore) ListImages(ctx context.Context) ([]domain.Image, error) {
	var rows []domain.Image
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		`SELECT id, image_url FROM talk_images`)
	return rows, err
}

func (s *TalkStore) ListRelated(ctx context.Context) ([]domain.RelatedLink, error) {
	var rows []domain.RelatedLink
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows,
		`SELECT id_ref, related_id FROM related_videos`)
	return rows, err
}
