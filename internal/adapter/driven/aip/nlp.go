package aip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

const (
	lexerPath       = "/rpc/2.0/nlp/v1/lexer"
	lexerCustomPath = "/rpc/2.0/nlp/v1/lexer_custom"
)

// Compile-time interface satisfaction check.
var _ driven.LexicalAnalyzer = (*LexicalClient)(nil)

// LexicalClient implements the driven.LexicalAnalyzer port.
type LexicalClient struct {
	svc *service
}

// NewLexicalClient creates a lexical analysis client for the production API.
func NewLexicalClient(cfg model.ClientConfig) (*LexicalClient, error) {
	return NewLexicalClientWithHTTPClient(nil, DefaultBaseURL, cfg)
}

// NewLexicalClientWithHTTPClient creates a LexicalClient with a custom
// http.Client and base URL. The token endpoint is derived from baseURL, so an
// httptest server can serve both.
func NewLexicalClientWithHTTPClient(httpClient *http.Client, baseURL string, cfg model.ClientConfig) (*LexicalClient, error) {
	svc, err := newService(httpClient, baseURL, cfg)
	if err != nil {
		return nil, err
	}
	return &LexicalClient{svc: svc}, nil
}

type lexerRequest struct {
	Text string `json:"text"`
}

// Lexer tokenizes text. When custom is true the user-lexicon endpoint is used.
func (c *LexicalClient) Lexer(ctx context.Context, text string, custom bool) (model.LexerResult, error) {
	body, err := json.Marshal(lexerRequest{Text: text})
	if err != nil {
		return model.LexerResult{}, fmt.Errorf("marshaling lexer request: %w", err)
	}

	op, path := "lexer", lexerPath
	if custom {
		op, path = "lexer_custom", lexerCustomPath
	}

	raw, err := c.svc.post(ctx, op, path, url.Values{"charset": {"UTF-8"}}, "application/json", body)
	if err != nil {
		return model.LexerResult{}, err
	}

	fields := Normalize(raw)
	if env := mapErrorEnvelope(fields); env != nil {
		return model.LexerResult{Error: env, Fields: fields}, nil
	}

	return model.LexerResult{Lexer: mapLexer(fields), Fields: fields}, nil
}
