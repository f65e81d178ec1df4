// Package pipeline builds one denormalized Document per talk from the flat
// extracts of a Dataset.
//
// Two independent branches run concurrently: the main branch joins details
// and aggregated tags onto the talks, and the related branch resolves every
// related-video link to a full detail record and regroups them per talk. The
// final left join on the talk id is the only synchronization point.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"talk_enricher/internal/dataset"
	"talk_enricher/internal/domain"
)

type Options struct {
	DropNullIDs       bool
	StrictCardinality bool
	SortLists         bool
	Partitions        int
}

type Result struct {
	Documents []domain.Document
	Stats     domain.EnrichStats
}

type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		opts:   opts,
		logger: logger.With("component", "pipeline"),
	}
}

// mainRow is a talk with its detail and aggregated tags attached.
type mainRow struct {
	talk   domain.Talk
	detail *domain.Detail
	tags   []string
}

// relatedRef is one exploded related-video link: the talk that references
// it and the internal id it points to.
type relatedRef struct {
	mainID     *string
	internalID string
}

type relatedKey struct {
	mainID     string
	mainNull   bool
	internalID string
}

type resolvedRef struct {
	mainID *string
	detail *domain.DetailFull
}

var (
	talkID        = dataset.StringKey(func(t domain.Talk) *string { return t.ID })
	detailIDRef   = dataset.StringKey(func(d domain.Detail) *string { return d.IDRef })
	imageID       = dataset.StringKey(func(i domain.Image) *string { return i.ID })
	tagIDRef      = dataset.StringKey(func(l domain.TagLink) *string { return l.IDRef })
	relatedIDRef  = dataset.StringKey(func(l domain.RelatedLink) *string { return l.IDRef })
	mainRowTalkID = dataset.StringKey(func(r mainRow) *string { return r.talk.ID })
	refInternalID = dataset.KeyFunc[relatedRef](func(r relatedRef) (string, bool) { return r.internalID, true })
	refMainID     = dataset.StringKey(func(r resolvedRef) *string { return r.mainID })
	detailFullID  = dataset.StringKey(func(d domain.DetailFull) *string { return d.InternalID })
	resolvedID    = dataset.KeyFunc[resolvedRef](func(r resolvedRef) (string, bool) {
		if r.detail == nil || r.detail.InternalID == nil {
			return "", false
		}
		return *r.detail.InternalID, true
	})
)

// Run executes the enrichment over ds. The returned documents are complete
// before Run returns; nothing is emitted on error.
func (p *Pipeline) Run(ctx context.Context, ds *domain.Dataset) (*Result, error) {
	res := &Result{}
	res.Stats.Talks = len(ds.Talks)
	res.Stats.Details = len(ds.Details)
	res.Stats.TagLinks = len(ds.Tags)
	res.Stats.Images = len(ds.Images)
	res.Stats.RelatedLinks = len(ds.Related)

	talks := dataset.FilterNotNull(ds.Talks, talkID)
	res.Stats.NullIDTalks = len(ds.Talks) - len(talks)
	p.logger.Info("talks loaded",
		"rows", len(ds.Talks),
		"rows_with_id", len(talks),
		"drop_null_ids", p.opts.DropNullIDs,
	)
	if !p.opts.DropNullIDs {
		talks = ds.Talks
	}

	var (
		main    []mainRow
		related []dataset.Group[domain.RelatedVideo]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		main, err = p.enrichTalks(gctx, talks, ds.Details, ds.Tags)
		return err
	})
	g.Go(func() error {
		var err error
		related, err = p.relatedVideos(gctx, ds, &res.Stats)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	final, err := dataset.PartitionedLeftOuterJoin(ctx, main, related,
		mainRowTalkID, dataset.GroupKey[domain.RelatedVideo], p.opts.Partitions)
	if err != nil {
		return nil, fmt.Errorf("join related videos: %w", err)
	}

	res.Documents = make([]domain.Document, 0, len(final))
	seen := make(map[string]struct{}, len(final))
	for _, pr := range final {
		doc := toDocument(pr.Left)
		if pr.Right != nil {
			doc.RelatedVideosDetails = pr.Right.Values
		}
		if doc.ID != nil {
			if _, dup := seen[*doc.ID]; dup {
				res.Stats.DuplicateIDs++
			}
			seen[*doc.ID] = struct{}{}
		}
		res.Documents = append(res.Documents, doc)
	}
	res.Stats.Documents = len(res.Documents)

	if res.Stats.DuplicateIDs > 0 {
		p.logger.Warn("documents share an _id", "duplicates", res.Stats.DuplicateIDs)
	}

	return res, nil
}

// enrichTalks joins details and aggregated tags onto the talks.
func (p *Pipeline) enrichTalks(ctx context.Context, talks []domain.Talk, details []domain.Detail, tags []domain.TagLink) ([]mainRow, error) {
	withDetails, err := dataset.PartitionedLeftOuterJoin(ctx, talks, details, talkID, detailIDRef, p.opts.Partitions)
	if err != nil {
		return nil, fmt.Errorf("join details: %w", err)
	}

	rows := make([]mainRow, len(withDetails))
	for i, pr := range withDetails {
		rows[i] = mainRow{talk: pr.Left, detail: pr.Right}
	}

	var opts []dataset.GroupOption[string]
	if p.opts.SortLists {
		opts = append(opts, dataset.OrderBy(strings.Compare))
	}
	tagsByTalk := dataset.GroupAggregate(tags, tagIDRef,
		dataset.Value(func(l domain.TagLink) *string { return l.Tag }), opts...)

	withTags, err := dataset.PartitionedLeftOuterJoin(ctx, rows, tagsByTalk,
		mainRowTalkID, dataset.GroupKey[string], p.opts.Partitions)
	if err != nil {
		return nil, fmt.Errorf("join tags: %w", err)
	}

	out := make([]mainRow, len(withTags))
	for i, pr := range withTags {
		out[i] = pr.Left
		if pr.Right != nil {
			out[i].tags = pr.Right.Values
		}
	}

	p.logger.Debug("main branch done",
		"with_details", len(withDetails),
		"tag_groups", len(tagsByTalk),
		"rows", len(out),
	)
	return out, nil
}

// relatedVideos resolves related links to full details and regroups them
// by the referencing talk id.
func (p *Pipeline) relatedVideos(ctx context.Context, ds *domain.Dataset, stats *domain.EnrichStats) ([]dataset.Group[domain.RelatedVideo], error) {
	details, err := p.detailFull(ctx, ds)
	if err != nil {
		return nil, err
	}

	relatedByTalk := dataset.GroupAggregate(ds.Related, relatedIDRef,
		dataset.Value(func(l domain.RelatedLink) *string { return l.RelatedID }))

	exploded := dataset.Explode(relatedByTalk,
		func(g dataset.Group[string]) []string { return g.Values },
		func(g dataset.Group[string], id string) relatedRef {
			ref := relatedRef{internalID: id}
			if !g.Null {
				key := g.Key
				ref.mainID = &key
			}
			return ref
		},
	)

	joined, err := dataset.PartitionedLeftOuterJoin(ctx, exploded, details, refInternalID, detailFullID, p.opts.Partitions)
	if err != nil {
		return nil, fmt.Errorf("join related details: %w", err)
	}
	withDetails := make([]resolvedRef, len(joined))
	for i, pr := range joined {
		withDetails[i] = resolvedRef{mainID: pr.Left.mainID, detail: pr.Right}
	}

	resolved := dataset.FilterNotNull(withDetails, resolvedID)
	unique := dataset.Dedup(resolved, func(r resolvedRef) relatedKey {
		k := relatedKey{internalID: *r.detail.InternalID, mainNull: r.mainID == nil}
		if r.mainID != nil {
			k.mainID = *r.mainID
		}
		return k
	})

	var opts []dataset.GroupOption[domain.RelatedVideo]
	if p.opts.SortLists {
		opts = append(opts, dataset.OrderBy(compareRelated))
	}
	agg := dataset.GroupAggregate(unique, refMainID, func(r resolvedRef) (domain.RelatedVideo, bool) {
		return toRelatedVideo(r.detail), true
	}, opts...)

	stats.DanglingRelated = len(withDetails) - len(resolved)
	stats.DuplicateRelated = len(resolved) - len(unique)

	p.logger.Debug("related branch done",
		"details", len(details),
		"exploded", len(exploded),
		"dangling", stats.DanglingRelated,
		"duplicates", stats.DuplicateRelated,
		"groups", len(agg),
	)
	return agg, nil
}

// detailFull enriches every detail with its image and the talk-level
// fields. Rows stay keyed by internal id.
func (p *Pipeline) detailFull(ctx context.Context, ds *domain.Dataset) ([]domain.DetailFull, error) {
	withImages, err := lookupJoin(ctx, p.opts, ds.Details, ds.Images, detailIDRef, imageID)
	if err != nil {
		return nil, fmt.Errorf("join images: %w", err)
	}

	withTalks, err := lookupJoin(ctx, p.opts, withImages, ds.Talks,
		dataset.StringKey(func(pr dataset.Pair[domain.Detail, domain.Image]) *string { return pr.Left.IDRef }),
		talkID)
	if err != nil {
		return nil, fmt.Errorf("join talk fields: %w", err)
	}

	out := make([]domain.DetailFull, len(withTalks))
	for i, pr := range withTalks {
		d := pr.Left.Left
		full := domain.DetailFull{
			IDRef:       d.IDRef,
			InternalID:  d.InternalID,
			Description: d.Description,
			Duration:    d.Duration,
			PublishedAt: d.PublishedAt,
		}
		if img := pr.Left.Right; img != nil {
			full.ImageURL = img.ImageURL
		}
		if t := pr.Right; t != nil {
			full.Title = t.Title
			full.Speaker = t.Speaker
			full.VideoURL = t.VideoURL
		}
		out[i] = full
	}
	return out, nil
}

// lookupJoin is a left outer join whose right side is expected to be unique
// per key; with StrictCardinality a repeated key is an error.
func lookupJoin[L, R any](ctx context.Context, opts Options, left []L, right []R, lk dataset.KeyFunc[L], rk dataset.KeyFunc[R]) ([]dataset.Pair[L, R], error) {
	if opts.StrictCardinality {
		return dataset.LeftOuterJoinUnique(left, right, lk, rk)
	}
	return dataset.PartitionedLeftOuterJoin(ctx, left, right, lk, rk, opts.Partitions)
}

func toDocument(r mainRow) domain.Document {
	doc := domain.Document{
		ID:       r.talk.ID,
		Title:    r.talk.Title,
		Speaker:  r.talk.Speaker,
		VideoURL: r.talk.VideoURL,
		Tags:     r.tags,
	}
	if d := r.detail; d != nil {
		doc.InternalID = d.InternalID
		doc.Description = d.Description
		doc.Duration = d.Duration
		doc.PublishedAt = d.PublishedAt
	}
	return doc
}

func toRelatedVideo(d *domain.DetailFull) domain.RelatedVideo {
	return domain.RelatedVideo{
		ID:          d.IDRef,
		InternalID:  d.InternalID,
		Title:       d.Title,
		Speaker:     d.Speaker,
		VideoURL:    d.VideoURL,
		Description: d.Description,
		Duration:    d.Duration,
		PublishedAt: d.PublishedAt,
		ImageURL:    d.ImageURL,
	}
}

func compareRelated(a, b domain.RelatedVideo) int {
	return strings.Compare(deref(a.InternalID), deref(b.InternalID))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
