package out

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"vocabhub/internal/modules/session/domain"
	sessionout "vocabhub/internal/modules/session/port/out"
	apperrors "vocabhub/internal/platform/errors"
)

// YAMLDeckSource reads decks of the form:
//
//	words:
//	  - word: apple
//	    definition: a round fruit
//	    level: 1
type YAMLDeckSource struct{}

func NewYAMLDeckSource() sessionout.DeckSource {
	return YAMLDeckSource{}
}

type deckFile struct {
	Words []domain.DeckWord `yaml:"words"`
}

func (YAMLDeckSource) ReadDeck(path string) ([]domain.DeckWord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	var deck deckFile
	if err := yaml.Unmarshal(raw, &deck); err != nil {
		return nil, fmt.Errorf("parse deck %s: %w", path, err)
	}
	out := make([]domain.DeckWord, 0, len(deck.Words))
	for i, w := range deck.Words {
		w.Word = strings.TrimSpace(w.Word)
		w.Definition = strings.TrimSpace(w.Definition)
		if w.Word == "" || w.Definition == "" {
			return nil, fmt.Errorf("deck %s entry %d: word and definition are required: %w", path, i+1, apperrors.ErrInvalidInput)
		}
		if w.Level <= 0 {
			w.Level = 1
		}
		out = append(out, w)
	}
	return out, nil
}
