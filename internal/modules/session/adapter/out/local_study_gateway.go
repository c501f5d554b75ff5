package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"vocabhub/internal/modules/session/domain"
	sessionout "vocabhub/internal/modules/session/port/out"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/tx"
)

const (
	defaultNewLimit    = 10
	defaultReviewLimit = 20
	relearnDelay       = 10 * time.Minute
)

// LocalStudyGateway serves study sessions from the SQLite store. Review
// scheduling doubles the interval on success and brings a missed word back
// after a short relearn delay.
type LocalStudyGateway struct {
	store *SQLiteStore
}

func NewLocalStudyGateway(store *SQLiteStore) sessionout.StudyGateway {
	return &LocalStudyGateway{store: store}
}

func (g *LocalStudyGateway) Load(ctx context.Context, _ string, params domain.LoadParams) (domain.LoadResult[domain.StudyCard], error) {
	newLimit := params.NewItemLimit
	if newLimit <= 0 {
		newLimit = defaultNewLimit
	}
	reviewLimit := params.ReviewItemLimit
	if reviewLimit <= 0 {
		reviewLimit = defaultReviewLimit
	}
	wantNew, wantReview := true, true
	switch params.ModeFilter {
	case "new":
		wantReview = false
	case "review":
		wantNew = false
	case "", "mixed":
	default:
		return domain.LoadResult[domain.StudyCard]{}, fmt.Errorf("%w: unknown mode filter %q", apperrors.ErrInvalidInput, params.ModeFilter)
	}

	var result domain.LoadResult[domain.StudyCard]
	err := g.store.tx.Within(ctx, func(ctx context.Context) error {
		now := g.store.clock.Now()
		var review, fresh []wordRow
		var err error
		if wantReview {
			if review, err = g.store.dueWords(ctx, now, reviewLimit); err != nil {
				return err
			}
		}
		if wantNew {
			if fresh, err = g.store.newWords(ctx, newLimit); err != nil {
				return err
			}
		}
		due, err := g.store.countDue(ctx, now)
		if err != nil {
			return err
		}
		result.Metadata = map[string]int{"new": len(fresh), "review": len(review), "due": due}

		ids := make([]string, 0, len(review)+len(fresh))
		for _, w := range review {
			result.Entries = append(result.Entries, studyEntry(w, domain.CardReview))
			ids = append(ids, w.id)
		}
		for _, w := range fresh {
			result.Entries = append(result.Entries, studyEntry(w, domain.CardNew))
			ids = append(ids, w.id)
		}
		if len(ids) == 0 {
			return nil
		}
		result.SessionID, err = g.store.openSession(ctx, "study", ids)
		return err
	})
	if err != nil {
		return domain.LoadResult[domain.StudyCard]{}, err
	}
	return result, nil
}

func studyEntry(w wordRow, state domain.CardState) domain.Entry[domain.StudyCard] {
	example := ""
	if len(w.examples) > 0 {
		example = w.examples[0]
	}
	return domain.Entry[domain.StudyCard]{
		ID:        w.id,
		Primary:   w.word,
		Secondary: w.definition,
		Payload: domain.StudyCard{
			Phonetic:     w.phonetic,
			PartOfSpeech: w.partOfSpeech,
			Example:      example,
			State:        state,
		},
	}
}

// Submit records the response and reschedules the word. Unknown sessions,
// closed sessions and foreign items are not accepted.
func (g *LocalStudyGateway) Submit(ctx context.Context, _ string, sessionID, itemID string, response domain.StudyResponse) (domain.SubmitResult, error) {
	accepted := true
	err := g.store.tx.Within(ctx, func(ctx context.Context) error {
		already, _, err := g.store.recordResponse(ctx, "study", sessionID, itemID, response)
		if isRefusal(err) {
			accepted = false
			return nil
		}
		if err != nil || already {
			return err
		}
		return g.store.reschedule(ctx, itemID, response.Success())
	})
	if err != nil {
		return domain.SubmitResult{}, err
	}
	return domain.SubmitResult{Accepted: accepted}, nil
}

func (g *LocalStudyGateway) Abandon(ctx context.Context, _ string, sessionID string) (bool, error) {
	return g.store.abandonSession(ctx, "study", sessionID)
}

func isRefusal(err error) bool {
	return errors.Is(err, errUnknownSession) || errors.Is(err, errSessionClosed) || errors.Is(err, errUnknownItem)
}

// reschedule applies the doubling interval: success doubles the interval
// (at least one day), failure resets it and brings the word back soon.
func (s *SQLiteStore) reschedule(ctx context.Context, wordID string, success bool) error {
	exec := tx.From(ctx, s.db)
	now := s.clock.Now()
	var interval float64
	var reviews, lapses int
	err := exec.QueryRowContext(ctx,
		`SELECT interval_days, reviews, lapses FROM study_progress WHERE word_id = ?`, wordID).Scan(&interval, &reviews, &lapses)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load progress: %w", err)
	}
	reviews++
	due := now.Add(relearnDelay)
	if success {
		interval = math.Max(1, interval*2)
		due = now.Add(time.Duration(interval * float64(24*time.Hour)))
	} else {
		interval = 0
		lapses++
	}
	_, err = exec.ExecContext(ctx, `
INSERT INTO study_progress (word_id, interval_days, due_at, reviews, lapses, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(word_id) DO UPDATE SET
  interval_days=excluded.interval_days,
  due_at=excluded.due_at,
  reviews=excluded.reviews,
  lapses=excluded.lapses,
  updated_at=excluded.updated_at;`,
		wordID, interval, stamp(due), reviews, lapses, stamp(now))
	if err != nil {
		return fmt.Errorf("store progress: %w", err)
	}
	return nil
}
