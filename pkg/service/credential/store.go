package credential

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"

	"github.com/newsverify/adkbridge/pkg/model"
)

var (
	ErrNoCredential = goerr.New("no credential available")
)

// Store holds the current bearer credential for the process. It is the
// only shared mutable state in the bridge: the refresher writes, any
// number of concurrent query paths read. Token and expiry are swapped as
// one unit so a reader never observes a torn update.
type Store struct {
	mu      sync.RWMutex
	current *model.Credential
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the current credential.
func (s *Store) Set(cred model.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cred
	s.current = &c
}

// Current returns a copy of the current credential and whether one has
// been set.
func (s *Store) Current() (model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.Credential{}, false
	}
	return *s.current, true
}

// Token implements oauth2.TokenSource so oauth2-aware consumers can take
// the store by handle. Returns ErrNoCredential when the store is empty.
func (s *Store) Token() (*oauth2.Token, error) {
	cred, ok := s.Current()
	if !ok {
		return nil, ErrNoCredential
	}

	return &oauth2.Token{
		AccessToken: cred.Token,
		TokenType:   "Bearer",
		Expiry:      cred.Expiry,
	}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
