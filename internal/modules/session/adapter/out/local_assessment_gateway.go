package out

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"vocabhub/internal/modules/session/domain"
	sessionout "vocabhub/internal/modules/session/port/out"
)

const (
	defaultAssessmentLimit = 30
	// levelBandSize is how many words of the full vocabulary each deck level
	// stands for.
	levelBandSize = 1000
)

// LocalAssessmentGateway samples the deck for a recognition test and
// estimates vocabulary size once every word is answered.
type LocalAssessmentGateway struct {
	store *SQLiteStore
}

func NewLocalAssessmentGateway(store *SQLiteStore) sessionout.AssessmentGateway {
	return &LocalAssessmentGateway{store: store}
}

func (g *LocalAssessmentGateway) Load(ctx context.Context, _ string, params domain.LoadParams) (domain.LoadResult[domain.AssessmentWord], error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultAssessmentLimit
	}
	var result domain.LoadResult[domain.AssessmentWord]
	err := g.store.tx.Within(ctx, func(ctx context.Context) error {
		words, err := g.store.randomWords(ctx, limit)
		if err != nil {
			return err
		}
		// Easy words first.
		sort.SliceStable(words, func(i, j int) bool {
			if words[i].level != words[j].level {
				return words[i].level < words[j].level
			}
			return words[i].word < words[j].word
		})
		ids := make([]string, len(words))
		levels := map[string]int{}
		for i, w := range words {
			ids[i] = w.id
			levels[fmt.Sprintf("level_%d", w.level)]++
			result.Entries = append(result.Entries, domain.Entry[domain.AssessmentWord]{
				ID:        w.id,
				Primary:   w.word,
				Secondary: w.definition,
				Payload: domain.AssessmentWord{
					Level:        w.level,
					PartOfSpeech: w.partOfSpeech,
					Examples:     w.examples,
				},
			})
		}
		result.Metadata = levels
		if len(ids) == 0 {
			return nil
		}
		result.SessionID, err = g.store.openSession(ctx, "assessment", ids)
		return err
	})
	if err != nil {
		return domain.LoadResult[domain.AssessmentWord]{}, err
	}
	return result, nil
}

func (g *LocalAssessmentGateway) Submit(ctx context.Context, _ string, sessionID, itemID string, response domain.AssessmentResponse) (domain.SubmitResult, error) {
	result := domain.SubmitResult{Accepted: true}
	err := g.store.tx.Within(ctx, func(ctx context.Context) error {
		_, complete, err := g.store.recordResponse(ctx, "assessment", sessionID, itemID, response)
		if isRefusal(err) {
			result.Accepted = false
			return nil
		}
		if err != nil || !complete {
			return err
		}
		result.Aggregate, err = g.store.estimate(ctx, sessionID)
		return err
	})
	if err != nil {
		return domain.SubmitResult{}, err
	}
	return result, nil
}

func (g *LocalAssessmentGateway) Abandon(ctx context.Context, _ string, sessionID string) (bool, error) {
	return g.store.abandonSession(ctx, "assessment", sessionID)
}

// estimate sums, over deck levels, the share of recognised words times the
// band each level represents.
func (s *SQLiteStore) estimate(ctx context.Context, sessionID string) (map[string]float64, error) {
	words, raw, err := s.responses(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	type tally struct{ seen, recognized int }
	byLevel := map[int]*tally{}
	recognized := 0
	for i, w := range words {
		var resp domain.AssessmentResponse
		if raw[i] != "" {
			if err := json.Unmarshal([]byte(raw[i]), &resp); err != nil {
				return nil, fmt.Errorf("decode response: %w", err)
			}
		}
		t := byLevel[w.level]
		if t == nil {
			t = &tally{}
			byLevel[w.level] = t
		}
		t.seen++
		if resp.Recognition == domain.Recognized {
			t.recognized++
			recognized++
		}
	}
	total := 0.0
	for _, t := range byLevel {
		total += float64(t.recognized) / float64(t.seen) * levelBandSize
	}
	return map[string]float64{
		domain.AggregateEstimate:   total,
		domain.AggregateRecognized: float64(recognized),
		domain.AggregateTotal:      float64(len(words)),
	}, nil
}
