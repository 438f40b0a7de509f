package aip

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenSource = (*TokenManager)(nil)

// FetchedToken is the raw outcome of one client-credentials exchange.
type FetchedToken struct {
	AccessToken string
	Lifetime    int64 // Seconds from the moment of the fetch.
}

// CredentialFetcher performs one client-credentials exchange against the
// authentication endpoint.
type CredentialFetcher interface {
	FetchToken(ctx context.Context) (FetchedToken, error)
}

// TokenManager hands out the held access token and replaces it once it has
// expired. Each service client owns one TokenManager; credentials are never
// shared between clients.
//
// The mutex only protects the held credential. The fetch itself runs
// unlocked, so two callers racing on a missing or expired credential may both
// fetch; both tokens are valid and the last one stored wins.
type TokenManager struct {
	fetcher CredentialFetcher
	now     func() time.Time

	mu   sync.Mutex
	cred *model.Credential
}

// NewTokenManager creates a TokenManager that obtains credentials from fetcher.
// now may be nil, in which case time.Now is used.
func NewTokenManager(fetcher CredentialFetcher, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{fetcher: fetcher, now: now}
}

// Token returns the held token while it is valid, otherwise fetches and stores
// a new one. A failed fetch is returned as *model.AuthenticationError and
// leaves the held state untouched.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	now := m.now().Unix()

	if cred := m.current(); cred.Valid(now) {
		return cred.Token, nil
	}

	fetched, err := m.fetcher.FetchToken(ctx)
	if err != nil {
		return "", &model.AuthenticationError{Err: err}
	}

	cred := &model.Credential{
		Token:     fetched.AccessToken,
		IssuedAt:  now,
		ExpiresAt: now + fetched.Lifetime,
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	slog.Debug("aip access token refreshed",
		"issued_at", cred.IssuedAt,
		"expires_at", cred.ExpiresAt,
	)

	return cred.Token, nil
}

// Credential returns a copy of the held credential, or nil if none is held.
func (m *TokenManager) Credential() *model.Credential {
	cred := m.current()
	if cred == nil {
		return nil
	}
	c := *cred
	return &c
}

func (m *TokenManager) current() *model.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred
}
