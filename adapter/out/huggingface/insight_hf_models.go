package huggingface

// Hosted model identifiers, one per capability.
const (
	ModelSentiment = "siebert/sentiment-roberta-large-english"
	ModelEmotion   = "j-hartmann/emotion-english-distilroberta-base"
	ModelLanguage  = "papluca/xlm-roberta-base-language-detection"
	ModelToxicity  = "unitary/toxic-bert"
	ModelSarcasm   = "helinivan/english-sarcasm-detector"
	ModelNER       = "dslim/bert-base-NER"
	ModelZeroShot  = "facebook/bart-large-mnli"
)

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model,omitempty"`
	UseCache     bool `json:"use_cache"`
}

// classificationRequest feeds text-classification and token-classification
// pipelines.
type classificationRequest struct {
	Inputs  []string       `json:"inputs"`
	Options requestOptions `json:"options"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotRequest struct {
	Inputs     []string           `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    requestOptions     `json:"options"`
}

// zeroShotResponse is one per-text zero-shot entry; labels and scores are
// ranked descending and index-aligned.
type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// nerEntity is one aggregated token-classification span.
type nerEntity struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}
