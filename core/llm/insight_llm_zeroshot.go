package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"insight_server/core/port/out"
	"insight_server/pkg/apperr"
)

// ZeroShotClassifier implements out.ZeroShotClassifier with one chat
// completion per batch. The prompt pins the response to strict JSON so the
// decoded scores can be ranked like NLI output.
type ZeroShotClassifier struct {
	client *Client
}

func NewZeroShotClassifier(client *Client) *ZeroShotClassifier {
	return &ZeroShotClassifier{client: client}
}

const zeroShotSystemPrompt = `You are a text classification engine.
For every input text, score each candidate label between 0.0 and 1.0.
When multi_label is false the scores per text must sum to 1.0; otherwise score
each label independently.

Respond with JSON only, no prose:
{"results":[{"scores":{"<label>":0.0}}]}

The results array must have exactly one entry per input text, in input order.`

type zeroShotPrompt struct {
	Texts           []string `json:"texts"`
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotCompletion struct {
	Results []struct {
		Scores map[string]float64 `json:"scores"`
	} `json:"results"`
}

func (z *ZeroShotClassifier) ClassifyBatch(ctx context.Context, texts []string, candidateLabels []string, multiLabel bool, _ int) ([]out.ZeroShotResult, error) {
	if len(texts) == 0 {
		return []out.ZeroShotResult{}, nil
	}

	prompt, err := json.Marshal(zeroShotPrompt{
		Texts:           texts,
		CandidateLabels: candidateLabels,
		MultiLabel:      multiLabel,
	})
	if err != nil {
		return nil, apperr.Inference(err)
	}

	resp, err := z.client.CompleteWithSystem(ctx, zeroShotSystemPrompt, string(prompt))
	if err != nil {
		return nil, apperr.Inference(err)
	}

	var completion zeroShotCompletion
	if err := json.Unmarshal([]byte(cleanJSONResponse(resp)), &completion); err != nil {
		return nil, apperr.Inference(fmt.Errorf("decode completion: %w", err))
	}
	if len(completion.Results) != len(texts) {
		return nil, apperr.Inference(fmt.Errorf("completion returned %d results for %d texts", len(completion.Results), len(texts)))
	}

	results := make([]out.ZeroShotResult, len(texts))
	for i, entry := range completion.Results {
		results[i] = rankScores(entry.Scores, candidateLabels)
	}
	return results, nil
}

// rankScores orders the candidate labels by their scores, descending. Labels
// the completion omitted score zero so the result always covers the full
// candidate set.
func rankScores(scores map[string]float64, candidateLabels []string) out.ZeroShotResult {
	type pair struct {
		label string
		score float64
	}
	pairs := make([]pair, 0, len(candidateLabels))
	for _, label := range candidateLabels {
		score := scores[label]
		if score == 0 {
			// Tolerate case drift in completion keys.
			for k, v := range scores {
				if strings.EqualFold(k, label) {
					score = v
					break
				}
			}
		}
		pairs = append(pairs, pair{label: label, score: score})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	result := out.ZeroShotResult{
		Labels: make([]string, len(pairs)),
		Scores: make([]float64, len(pairs)),
	}
	for i, p := range pairs {
		result.Labels[i] = p.label
		result.Scores[i] = p.score
	}
	return result
}
