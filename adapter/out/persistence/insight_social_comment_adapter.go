package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"insight_server/core/domain"
)

// =============================================================================
// Social Comment Adapter (PostgreSQL, read-only)
// =============================================================================

// SocialCommentAdapter implements out.SocialCommentRepository. The table is
// written by the upload service; this adapter only reads it.
type SocialCommentAdapter struct {
	db *sqlx.DB
}

// NewSocialCommentAdapter creates a new SocialCommentAdapter.
func NewSocialCommentAdapter(db *sqlx.DB) *SocialCommentAdapter {
	return &SocialCommentAdapter{db: db}
}

const socialCommentSelectColumns = `
	id, username, comment, platform, brand, created_date, last_modified_date`

// socialCommentRow represents one social_comment_analysis row.
type socialCommentRow struct {
	ID               string         `db:"id"`
	Username         sql.NullString `db:"username"`
	Comment          sql.NullString `db:"comment"`
	Platform         sql.NullString `db:"platform"`
	Brand            sql.NullString `db:"brand"`
	CreatedDate      sql.NullTime   `db:"created_date"`
	LastModifiedDate sql.NullTime   `db:"last_modified_date"`
}

func (r *socialCommentRow) toEntity() *domain.SocialComment {
	entity := &domain.SocialComment{
		ID:       r.ID,
		Username: r.Username.String,
		Comment:  r.Comment.String,
		Platform: r.Platform.String,
		Brand:    r.Brand.String,
	}
	if r.CreatedDate.Valid {
		entity.CreatedDate = timePtr(r.CreatedDate.Time)
	}
	if r.LastModifiedDate.Valid {
		entity.LastModifiedDate = timePtr(r.LastModifiedDate.Time)
	}
	return entity
}

// FindAll returns records in creation order. limit <= 0 fetches everything.
func (a *SocialCommentAdapter) FindAll(ctx context.Context, limit int) ([]*domain.SocialComment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM social_comment_analysis
		ORDER BY created_date ASC, id ASC`, socialCommentSelectColumns)
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []socialCommentRow
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select social comments: %w", err)
	}

	records := make([]*domain.SocialComment, len(rows))
	for i := range rows {
		records[i] = rows[i].toEntity()
	}
	return records, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
