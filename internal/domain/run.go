package domain

import (
	"errors"
	"time"
)

var (
	ErrDuplicateKey      = errors.New("duplicate join key")
	ErrMissingDocumentID = errors.New("document has no _id")
	ErrMissingColumn     = errors.New("missing column")
)

// EnrichStats holds statistics about an enrichment run.
type EnrichStats struct {
	RunID            string        `json:"run_id"`
	SourceID         string        `json:"source_id"`
	Talks            int           `json:"talks"`
	NullIDTalks      int           `json:"null_id_talks"`
	Details          int           `json:"details"`
	TagLinks         int           `json:"tag_links"`
	Images           int           `json:"images"`
	RelatedLinks     int           `json:"related_links"`
	DanglingRelated  int           `json:"dangling_related"`
	DuplicateRelated int           `json:"duplicate_related"`
	Documents        int           `json:"documents"`
	DuplicateIDs     int           `json:"duplicate_ids"`
	Written          int           `json:"written"`
	Duration         time.Duration `json:"duration"`
}

type RunState struct {
	ID                int64     `db:"id"`
	SourceID          string    `db:"source_id"`
	LastRunAt         time.Time `db:"last_run_at"`
	LastRunID         string    `db:"last_run_id"`
	LastDocumentCount int64     `db:"last_document_count"`
	TotalRuns         int64     `db:"total_runs"`
}
