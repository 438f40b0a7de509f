// Package aip implements the AIP lexical analysis and VAT invoice OCR ports
// over the Baidu AI Platform HTTP APIs.
package aip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

// DefaultBaseURL is the production AIP API host.
const DefaultBaseURL = "https://aip.baidubce.com"

const tokenPath = "/oauth/2.0/token"

// defaultHTTPClient is shared by clients built without an explicit http.Client.
// It enforces a 30-second timeout as a safety net alongside context cancellation.
var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

var validate = validator.New()

// service is the request core embedded by each AIP client. It owns the
// client's TokenManager; a token is requested anew for every call.
type service struct {
	httpClient *http.Client
	baseURL    string
	tokens     driven.TokenSource
}

func newService(httpClient *http.Client, baseURL string, cfg model.ClientConfig) (*service, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}
	base := strings.TrimRight(u.String(), "/")

	if httpClient == nil {
		httpClient = defaultHTTPClient
	}

	fetcher := NewOAuthFetcher(httpClient, base+tokenPath, cfg)

	return &service{
		httpClient: httpClient,
		baseURL:    base,
		tokens:     NewTokenManager(fetcher, time.Now),
	}, nil
}

// post issues one authenticated POST and decodes the JSON object it returns.
// Numbers are kept as json.Number so 64-bit log ids survive decoding.
func (s *service) post(ctx context.Context, op, path string, query url.Values, contentType string, body []byte) (map[string]any, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("access_token", token)
	endpoint := s.baseURL + path + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &model.RemoteServiceError{Operation: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, &model.RemoteServiceError{Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.RemoteServiceError{Operation: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	logCall(op, resp.StatusCode, time.Since(start))

	raw, decodeErr := decodeObject(data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rsErr := &model.RemoteServiceError{Operation: op, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			if env := mapErrorEnvelope(Normalize(raw)); env != nil {
				rsErr.Code = env.ErrorCode
				rsErr.Message = env.ErrorMsg
			}
		}
		return nil, rsErr
	}

	if decodeErr != nil {
		return nil, &model.RemoteServiceError{Operation: op, StatusCode: resp.StatusCode, Err: decodeErr}
	}

	return raw, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decoding response: body is not a JSON object")
	}
	return raw, nil
}

// logCall logs the outcome of each domain API call.
func logCall(op string, status int, elapsed time.Duration) {
	slog.Debug("aip api call",
		"operation", op,
		"status", status,
		"duration", elapsed.Round(time.Millisecond),
	)
}
