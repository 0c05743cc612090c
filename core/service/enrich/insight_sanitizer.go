// Package enrich implements the batch enrichment pipeline: sanitize raw
// texts, fan them through independent classification stages, derive a risk
// index, and assemble per-record insights.
package enrich

import "strings"

// MaxTextLen caps the text length handed to classification capabilities.
// Truncation applies to the classification copy only; stored text is kept
// intact.
const MaxTextLen = 512

// SanitizedItem is one prepared input position.
type SanitizedItem struct {
	Text  string // truncated classification copy
	Valid bool   // non-blank after trimming
}

// SanitizedBatch is the prepared form of an input batch. Its length always
// equals the input length and its order is the input order; the position
// index is the join key for all downstream stage results.
type SanitizedBatch struct {
	Items []SanitizedItem
}

// Sanitize prepares raw texts for classification. Total function: there are
// no error conditions, missing texts become empty invalid positions.
func Sanitize(texts []string) SanitizedBatch {
	items := make([]SanitizedItem, len(texts))
	for i, text := range texts {
		items[i] = SanitizedItem{
			Text:  truncate(text, MaxTextLen),
			Valid: strings.TrimSpace(text) != "",
		}
	}
	return SanitizedBatch{Items: items}
}

// Len returns the batch length.
func (b SanitizedBatch) Len() int {
	return len(b.Items)
}

// ValidIndices returns the positions eligible for classification, in order.
func (b SanitizedBatch) ValidIndices() []int {
	indices := make([]int, 0, len(b.Items))
	for i, item := range b.Items {
		if item.Valid {
			indices = append(indices, i)
		}
	}
	return indices
}

// ValidTexts returns the truncated texts at the valid positions, aligned
// with ValidIndices.
func (b SanitizedBatch) ValidTexts() []string {
	texts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		if item.Valid {
			texts = append(texts, item.Text)
		}
	}
	return texts
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
