package csvfile

import "talk_enricher/internal/domain"

// column binds one or more accepted header names to a field setter.
type column[T any] struct {
	names    []string
	required bool
	set      func(row *T, v *string)
}

var talkColumns = []column[domain.Talk]{
	{names: []string{"id"}, required: true, set: func(r *domain.Talk, v *string) { r.ID = v }},
	{names: []string{"title"}, set: func(r *domain.Talk, v *string) { r.Title = v }},
	{names: []string{"speakers", "speaker"}, set: func(r *domain.Talk, v *string) { r.Speaker = v }},
	{names: []string{"url", "video_url"}, set: func(r *domain.Talk, v *string) { r.VideoURL = v }},
}

var detailColumns = []column[domain.Detail]{
	{names: []string{"id", "id_ref"}, required: true, set: func(r *domain.Detail, v *string) { r.IDRef = v }},
	{names: []string{"interalId", "internal_id", "internalId"}, required: true, set: func(r *domain.Detail, v *string) { r.InternalID = v }},
	{names: []string{"description"}, set: func(r *domain.Detail, v *string) { r.Description = v }},
	{names: []string{"duration"}, set: func(r *domain.Detail, v *string) { r.Duration = v }},
	{names: []string{"publishedAt", "published_at"}, set: func(r *domain.Detail, v *string) { r.PublishedAt = v }},
}

var tagColumns = []column[domain.TagLink]{
	{names: []string{"id", "id_ref"}, required: true, set: func(r *domain.TagLink, v *string) { r.IDRef = v }},
	{names: []string{"tag"}, required: true, set: func(r *domain.TagLink, v *string) { r.Tag = v }},
}

var imageColumns = []column[domain.Image]{
	{names: []string{"id"}, required: true, set: func(r *domain.Image, v *string) { r.ID = v }},
	{names: []string{"url", "image_url"}, required: true, set: func(r *domain.Image, v *string) { r.ImageURL = v }},
}

var relatedColumns = []column[domain.RelatedLink]{
	{names: []string{"id", "id_ref"}, required: true, set: func(r *domain.RelatedLink, v *string) { r.IDRef = v }},
	{names: []string{"related_id"}, required: true, set: func(r *domain.RelatedLink, v *string) { r.RelatedID = v }},
}
