package domain

import "time"

// Sentiment labels
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Toxicity labels
const (
	ToxicityToxic = "toxic"
	ToxicitySafe  = "safe"
)

// Sarcasm labels
const (
	SarcasmSarcastic    = "sarcastic"
	SarcasmNotSarcastic = "not_sarcastic"
)

// Intent labels produced by the zero-shot intent stage. The set is fixed;
// risk weighting depends on it.
const (
	IntentComplaint = "complaint"
	IntentQuestion  = "question"
	IntentRequest   = "request"
	IntentPraise    = "praise"
	IntentStatement = "statement"
	IntentUnknown   = "unknown"
)

// IntentLabels is the candidate label set given to the zero-shot classifier.
var IntentLabels = []string{IntentComplaint, IntentQuestion, IntentRequest, IntentPraise, IntentStatement}

// TopicLabels is the candidate label set for multi-label topic extraction.
var TopicLabels = []string{
	"product issue",
	"pricing",
	"usability",
	"support",
	"delivery",
	"feature request",
	"praise",
	"other",
}

// LanguageUnknown is the language fallback code.
const LanguageUnknown = "unknown"

// EmotionNeutral is the emotion fallback label.
const EmotionNeutral = "neutral"

// EmotionScore is one (emotion, score) pair, score in [0,1].
type EmotionScore struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

// CommentInsight is the fully assembled per-record enrichment output. One
// insight is produced per input record per run; it is never mutated after
// assembly and supersedes (not merges with) any earlier insight for the same
// identity when persisted.
type CommentInsight struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Platform string `json:"platform,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Comment  string `json:"comment"`

	Sentiment      string         `json:"sentiment"`
	SentimentScore float64        `json:"sentiment_score"`
	Polarity       float64        `json:"polarity"`
	Emotion        string         `json:"emotion"`
	EmotionScores  []EmotionScore `json:"emotion_scores"`

	Intent           string  `json:"intent"`
	IntentConfidence float64 `json:"intent_confidence"`
	Language         string  `json:"language"`
	Toxicity         string  `json:"toxicity"`
	ToxicityScore    float64 `json:"toxicity_score"`
	Sarcasm          string  `json:"sarcasm"`
	SarcasmScore     float64 `json:"sarcasm_score"`

	Topics   []string `json:"topics"`
	Entities []string `json:"entities"`

	RiskIndex float64 `json:"risk_index"`
}

// SentimentRecord is one row of the sentiment_analysis table: a persisted
// single-text sentiment+emotion result keyed back to its source record.
type SentimentRecord struct {
	ID             string         `json:"id"`
	SourceID       string         `json:"source_id"`
	SourceType     SourceType     `json:"source_type"`
	Sentiment      string         `json:"sentiment"`
	SentimentScore float64        `json:"sentiment_score"`
	TopEmotion     string         `json:"top_emotion"`
	EmotionScores  []EmotionScore `json:"emotion_scores"`
	AnalyzedText   string         `json:"analyzed_text"`
	CreatedAt      time.Time      `json:"created_at"`
}
