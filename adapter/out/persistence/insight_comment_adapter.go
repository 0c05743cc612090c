package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"insight_server/core/domain"
)

// =============================================================================
// Comment / Reply Adapters (PostgreSQL, read-only)
// =============================================================================

// CommentAdapter implements out.CommentRepository.
type CommentAdapter struct {
	db *sqlx.DB
}

// NewCommentAdapter creates a new CommentAdapter.
func NewCommentAdapter(db *sqlx.DB) *CommentAdapter {
	return &CommentAdapter{db: db}
}

// commentRow represents one comments row.
type commentRow struct {
	ID               string         `db:"id"`
	Text             sql.NullString `db:"text"`
	Timestamp        sql.NullTime   `db:"timestamp"`
	AccountID        sql.NullString `db:"account_id"`
	Username         sql.NullString `db:"username"`
	PostID           sql.NullString `db:"post_id"`
	SocialMediaType  sql.NullString `db:"social_media_type"`
	CreatedDate      sql.NullTime   `db:"created_date"`
	LastModifiedDate sql.NullTime   `db:"last_modified_date"`
}

func (r *commentRow) toEntity() *domain.Comment {
	entity := &domain.Comment{
		ID:              r.ID,
		Text:            r.Text.String,
		AccountID:       r.AccountID.String,
		Username:        r.Username.String,
		PostID:          r.PostID.String,
		SocialMediaType: domain.SocialMediaType(r.SocialMediaType.String),
	}
	if r.Timestamp.Valid {
		entity.Timestamp = timePtr(r.Timestamp.Time)
	}
	if r.CreatedDate.Valid {
		entity.CreatedDate = timePtr(r.CreatedDate.Time)
	}
	if r.LastModifiedDate.Valid {
		entity.LastModifiedDate = timePtr(r.LastModifiedDate.Time)
	}
	return entity
}

// FindByIDs returns the comments matching ids. Missing ids are silently
// absent from the result.
func (a *CommentAdapter) FindByIDs(ctx context.Context, ids []string) ([]*domain.Comment, error) {
	if len(ids) == 0 {
		return []*domain.Comment{}, nil
	}
	query := `
		SELECT id, text, timestamp, account_id, username, post_id,
		       social_media_type, created_date, last_modified_date
		FROM comments
		WHERE id = ANY($1)
		ORDER BY created_date ASC`

	var rows []commentRow
	if err := a.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("select comments by ids: %w", err)
	}
	comments := make([]*domain.Comment, len(rows))
	for i := range rows {
		comments[i] = rows[i].toEntity()
	}
	return comments, nil
}

// ReplyAdapter implements out.ReplyRepository.
type ReplyAdapter struct {
	db *sqlx.DB
}

// NewReplyAdapter creates a new ReplyAdapter.
func NewReplyAdapter(db *sqlx.DB) *ReplyAdapter {
	return &ReplyAdapter{db: db}
}

// replyRow represents one replies row.
type replyRow struct {
	ID               string         `db:"id"`
	Text             sql.NullString `db:"text"`
	Timestamp        sql.NullTime   `db:"timestamp"`
	AccountID        sql.NullString `db:"account_id"`
	Username         sql.NullString `db:"username"`
	CommentID        sql.NullString `db:"comment_id"`
	SocialMediaType  sql.NullString `db:"social_media_type"`
	CreatedDate      sql.NullTime   `db:"created_date"`
	LastModifiedDate sql.NullTime   `db:"last_modified_date"`
}

func (r *replyRow) toEntity() *domain.Reply {
	entity := &domain.Reply{
		ID:              r.ID,
		Text:            r.Text.String,
		AccountID:       r.AccountID.String,
		Username:        r.Username.String,
		CommentID:       r.CommentID.String,
		SocialMediaType: domain.SocialMediaType(r.SocialMediaType.String),
	}
	if r.Timestamp.Valid {
		entity.Timestamp = timePtr(r.Timestamp.Time)
	}
	if r.CreatedDate.Valid {
		entity.CreatedDate = timePtr(r.CreatedDate.Time)
	}
	if r.LastModifiedDate.Valid {
		entity.LastModifiedDate = timePtr(r.LastModifiedDate.Time)
	}
	return entity
}

// FindByIDs returns the replies matching ids.
func (a *ReplyAdapter) FindByIDs(ctx context.Context, ids []string) ([]*domain.Reply, error) {
	if len(ids) == 0 {
		return []*domain.Reply{}, nil
	}
	query := `
		SELECT id, text, timestamp, account_id, username, comment_id,
		       social_media_type, created_date, last_modified_date
		FROM replies
		WHERE id = ANY($1)
		ORDER BY created_date ASC`

	var rows []replyRow
	if err := a.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("select replies by ids: %w", err)
	}
	replies := make([]*domain.Reply, len(rows))
	for i := range rows {
		replies[i] = rows[i].toEntity()
	}
	return replies, nil
}
