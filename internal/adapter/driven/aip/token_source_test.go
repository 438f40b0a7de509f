package aip

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

type staticTokenSource struct {
	token string
	err   error
	calls int
}

func (s *staticTokenSource) Token(_ context.Context) (string, error) {
	s.calls++
	return s.token, s.err
}

func TestServicePost_UsesInjectedTokenSource(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "injected-token", r.URL.Query().Get("access_token"))
		_, _ = io.WriteString(w, `{"log_id": 1}`)
	}))
	t.Cleanup(srv.Close)

	tokens := &staticTokenSource{token: "injected-token"}
	svc := &service{httpClient: srv.Client(), baseURL: srv.URL, tokens: tokens}

	raw, err := svc.post(context.Background(), "lexer", lexerPath, nil, "application/json", []byte(`{}`))

	require.NoError(t, err)
	assert.Contains(t, raw, "log_id")
	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, int32(1), hits.Load())
}

func TestServicePost_TokenSourceErrorSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	authErr := &model.AuthenticationError{Err: errors.New("invalid_client")}
	svc := &service{httpClient: srv.Client(), baseURL: srv.URL, tokens: &staticTokenSource{err: authErr}}

	_, err := svc.post(context.Background(), "lexer", lexerPath, nil, "application/json", []byte(`{}`))

	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, int32(0), hits.Load())
}
