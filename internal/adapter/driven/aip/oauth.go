package aip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

// Compile-time interface satisfaction check.
var _ CredentialFetcher = (*OAuthFetcher)(nil)

// OAuthFetcher exchanges the API key and secret key for an access token using
// the OAuth2 client-credentials grant. Credentials are sent as request
// parameters, which is the only style the AIP token endpoint accepts.
type OAuthFetcher struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
}

// NewOAuthFetcher creates a fetcher posting to tokenURL with the key pair from cfg.
func NewOAuthFetcher(httpClient *http.Client, tokenURL string, cfg model.ClientConfig) *OAuthFetcher {
	return &OAuthFetcher{
		cfg: clientcredentials.Config{
			ClientID:     cfg.APIKey,
			ClientSecret: cfg.SecretKey,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// FetchToken performs one token request. Transport failures, non-2xx answers
// and bodies without an access token are all returned as errors.
func (f *OAuthFetcher) FetchToken(ctx context.Context) (FetchedToken, error) {
	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}

	tok, err := f.cfg.Token(ctx)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return FetchedToken{}, fmt.Errorf("token endpoint returned status %d: %w", rErr.Response.StatusCode, err)
		}
		return FetchedToken{}, fmt.Errorf("requesting access token: %w", err)
	}
	if tok.AccessToken == "" {
		return FetchedToken{}, errors.New("token response missing access_token")
	}

	lifetime := tok.ExpiresIn
	if lifetime == 0 {
		lifetime = extraSeconds(tok.Extra("expires_in"))
	}
	if lifetime < 0 {
		return FetchedToken{}, fmt.Errorf("token response has negative expires_in %d", lifetime)
	}

	return FetchedToken{AccessToken: tok.AccessToken, Lifetime: lifetime}, nil
}

// extraSeconds reads an expires_in value out of the raw token response.
func extraSeconds(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
