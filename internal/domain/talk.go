package domain

// Talk is a row of the primary talk dataset.
type Talk struct {
	ID       *string `db:"id"`
	Title    *string `db:"title"`
	Speaker  *string `db:"speaker"`
	VideoURL *string `db:"video_url"`
}

// Detail is one-to-one with a Talk through IDRef. InternalID is the
// identifier used by related-video links.
type Detail struct {
	IDRef       *string `db:"id_ref"`
	InternalID  *string `db:"internal_id"`
	Description *string `db:"description"`
	Duration    *string `db:"duration"`
	PublishedAt *string `db:"published_at"`
}

type TagLink struct {
	IDRef *string `db:"id_ref"`
	Tag   *string `db:"tag"`
}

// Image is keyed by the talk id (Detail.IDRef).
type Image struct {
	ID       *string `db:"id"`
	ImageURL *string `db:"image_url"`
}

// RelatedLink points from a talk id to the internal id of a related talk.
type RelatedLink struct {
	IDRef     *string `db:"id_ref"`
	RelatedID *string `db:"related_id"`
}

// DetailFull is a Detail enriched with its image and the talk-level fields.
// It is addressed by InternalID, never by the talk id.
type DetailFull struct {
	IDRef       *string
	InternalID  *string
	Description *string
	Duration    *string
	PublishedAt *string
	ImageURL    *string
	Title       *string
	Speaker     *string
	VideoURL    *string
}

// RelatedVideo is the nested struct embedded in a Document.
type RelatedVideo struct {
	ID          *string `bson:"id" json:"id"`
	InternalID  *string `bson:"internal_id" json:"internal_id"`
	Title       *string `bson:"title" json:"title"`
	Speaker     *string `bson:"speaker" json:"speaker"`
	VideoURL    *string `bson:"video_url" json:"video_url"`
	Description *string `bson:"description" json:"description"`
	Duration    *string `bson:"duration" json:"duration"`
	PublishedAt *string `bson:"published_at" json:"published_at"`
	ImageURL    *string `bson:"image_url" json:"image_url"`
}

// Document is the denormalized per-talk record written to the document store.
// Tags and RelatedVideosDetails are nil when the talk has no match.
type Document struct {
	ID                   *string        `bson:"_id" json:"_id"`
	Title                *string        `bson:"title" json:"title"`
	Speaker              *string        `bson:"speaker" json:"speaker"`
	VideoURL             *string        `bson:"video_url" json:"video_url"`
	InternalID           *string        `bson:"internal_id" json:"internal_id"`
	Description          *string        `bson:"description" json:"description"`
	Duration             *string        `bson:"duration" json:"duration"`
	PublishedAt          *string        `bson:"published_at" json:"published_at"`
	Tags                 []string       `bson:"tags" json:"tags"`
	RelatedVideosDetails []RelatedVideo `bson:"related_videos_details" json:"related_videos_details"`
}

// Dataset bundles the input tables of one enrichment run.
type Dataset struct {
	Talks   []Talk
	Details []Detail
	Tags    []TagLink
	Images  []Image
	Related []RelatedLink
}
