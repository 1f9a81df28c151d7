package oauth2client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/AmmannChristian/go-reqauth/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testTokenURL = "https://mock-oauth.example.com/token"

var errStoreDown = errors.New("store unavailable")

// fixedClock returns a clock pinned to a whole second so millisecond math is exact.
func fixedClock() (time.Time, func() time.Time) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return now, func() time.Time { return now }
}

func clientCredentials() *ClientCredentialsConfig {
	return &ClientCredentialsConfig{CommonConfig: CommonConfig{
		AccessTokenURL: testTokenURL,
		ClientID:       "client",
		ClientSecret:   "secret",
		Scope:          "openid profile",
	}}
}

func newTestCache(t *testing.T, mock *testutil.MockOAuth2Server, store TokenStore, opts ...Option) *TokenCache {
	t.Helper()

	opts = append([]Option{WithHTTPClient(mock.Client())}, opts...)
	cache, err := NewTokenCache(store, opts...)
	require.NoError(t, err)
	return cache
}

func failOnCall(t *testing.T) testutil.RoundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected token request to %s", req.URL)
		return nil, errors.New("unexpected token request")
	}
}

// recordingStore wraps a MemoryStore and can fail selected operations.
type recordingStore struct {
	*MemoryStore

	mu      sync.Mutex
	gets    int
	saves   int
	deletes int

	failGet    bool
	failSave   bool
	failDelete bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: NewMemoryStore()}
}

func (s *recordingStore) SaveToken(ctx context.Context, serviceID, account string, token *Token) error {
	s.mu.Lock()
	s.saves++
	fail := s.failSave
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.SaveToken(ctx, serviceID, account, token)
}

func (s *recordingStore) GetToken(ctx context.Context, serviceID, account string) (*Token, error) {
	s.mu.Lock()
	s.gets++
	fail := s.failGet
	s.mu.Unlock()
	if fail {
		return nil, errStoreDown
	}
	return s.MemoryStore.GetToken(ctx, serviceID, account)
}

func (s *recordingStore) DeleteToken(ctx context.Context, serviceID, account string) error {
	s.mu.Lock()
	s.deletes++
	fail := s.failDelete
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.DeleteToken(ctx, serviceID, account)
}

func (s *recordingStore) ops() (gets, saves, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.saves, s.deletes
}
