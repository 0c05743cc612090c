// Package out defines outbound ports (driven ports) for the application.
// These interfaces represent dependencies that the application needs.
package out

import (
	"context"

	"insight_server/core/domain"
)

// =============================================================================
// Record Sources (PostgreSQL, written by the upstream upload service)
// =============================================================================

// SocialCommentRepository reads social_comment_analysis rows in creation
// order. The table is owned by the upload service; this side only reads.
type SocialCommentRepository interface {
	// FindAll returns records ordered by created_date ascending.
	// limit <= 0 means no limit.
	FindAll(ctx context.Context, limit int) ([]*domain.SocialComment, error)
}

// CommentRepository reads comments collected from social platforms.
type CommentRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Comment, error)
}

// ReplyRepository reads replies collected from social platforms.
type ReplyRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Reply, error)
}
