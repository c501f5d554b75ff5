package out

import (
	"context"
	"net/url"
	"strings"

	pronunciationout "vocabhub/internal/modules/pronunciation/port/out"
	apperrors "vocabhub/internal/platform/errors"
	"vocabhub/internal/platform/httpx"
)

// DictionaryLookup reads audio assets from a dictionaryapi.dev compatible
// service: GET <base><word> returning entries with phonetics[].audio.
type DictionaryLookup struct {
	baseURL string
	client  *httpx.Client
}

func NewDictionaryLookup(baseURL string, client *httpx.Client) pronunciationout.Lookup {
	return &DictionaryLookup{baseURL: baseURL, client: client}
}

type dictionaryEntry struct {
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
}

func (d *DictionaryLookup) Lookup(ctx context.Context, label string) ([]string, error) {
	const op = "pronunciation.lookup"
	base := d.baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	var entries []dictionaryEntry
	if err := d.client.GetJSON(ctx, op, base+url.PathEscape(strings.ToLower(label)), &entries); err != nil {
		if apperrors.IsKind(err, apperrors.KindMalformed) {
			return nil, err
		}
		return nil, apperrors.New(op, apperrors.KindLookup, err)
	}
	var assets []string
	seen := map[string]struct{}{}
	for _, e := range entries {
		for _, p := range e.Phonetics {
			a := strings.TrimSpace(p.Audio)
			if a == "" {
				continue
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			assets = append(assets, a)
		}
	}
	return assets, nil
}
