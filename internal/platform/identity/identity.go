// Package identity supplies the bearer credential attached to every gateway
// call. Login flows live outside vocabhub; this package only reads the token
// they leave behind.
package identity

import (
	"os"
	"strings"
	"sync"
)

type Static struct {
	mu    sync.RWMutex
	token string
}

func NewStatic(token string) *Static {
	return &Static{token: strings.TrimSpace(token)}
}

// FromFile reads a token written by an external login helper. A missing file
// yields a logged-out identity, not an error.
func FromFile(path string) (*Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStatic(""), nil
		}
		return nil, err
	}
	return NewStatic(string(b)), nil
}

func (s *Static) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Static) LoggedIn() bool {
	_, ok := s.Token()
	return ok
}

func (s *Static) Set(token string) {
	s.mu.Lock()
	s.token = strings.TrimSpace(token)
	s.mu.Unlock()
}
