package domain

import "time"

// SocialMediaType represents the platform a comment was collected from
type SocialMediaType string

const (
	PlatformInstagram SocialMediaType = "INSTAGRAM"
	PlatformFacebook  SocialMediaType = "FACEBOOK"
)

// SourceType identifies what kind of record a text came from
type SourceType string

const (
	SourceComment SourceType = "COMMENT"
	SourceReply   SourceType = "REPLY"
	SourcePost    SourceType = "POST"
)

// Comment is a top-level comment on a post, written by the upstream
// collector service.
type Comment struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Timestamp        *time.Time      `json:"timestamp,omitempty"`
	AccountID        string          `json:"account_id,omitempty"`
	Username         string          `json:"username,omitempty"`
	PostID           string          `json:"post_id,omitempty"`
	SocialMediaType  SocialMediaType `json:"social_media_type,omitempty"`
	CreatedDate      *time.Time      `json:"created_date,omitempty"`
	LastModifiedDate *time.Time      `json:"last_modified_date,omitempty"`
}

// Reply is a reply to a comment.
type Reply struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Timestamp        *time.Time      `json:"timestamp,omitempty"`
	AccountID        string          `json:"account_id,omitempty"`
	Username         string          `json:"username,omitempty"`
	CommentID        string          `json:"comment_id,omitempty"`
	SocialMediaType  SocialMediaType `json:"social_media_type,omitempty"`
	CreatedDate      *time.Time      `json:"created_date,omitempty"`
	LastModifiedDate *time.Time      `json:"last_modified_date,omitempty"`
}

// SocialComment is one row of the social_comment_analysis table populated by
// the upload service. It is the raw input record of the enrichment pipeline:
// identity is externally assigned and stable, the metadata fields (username,
// platform, brand) are carried through to the insight unchanged.
type SocialComment struct {
	ID               string     `json:"id"`
	Username         string     `json:"username,omitempty"`
	Comment          string     `json:"comment"`
	Platform         string     `json:"platform,omitempty"`
	Brand            string     `json:"brand,omitempty"`
	CreatedDate      *time.Time `json:"created_date,omitempty"`
	LastModifiedDate *time.Time `json:"last_modified_date,omitempty"`
}
