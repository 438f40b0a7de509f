// Package application holds the use cases exposed by the gateway. Services
// depend only on the driven port interfaces.
package application

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
	"github.com/ericfisherdev/aipclient/internal/domain/port/driven"
)

var _ driven.LexicalAnalyzer = (*LexerService)(nil)

// LexerService runs lexical analysis and memoizes successful results. The
// remote analysis is deterministic for a given text and mode, so repeated
// requests are answered without a network call.
type LexerService struct {
	analyzer driven.LexicalAnalyzer
	memo     *lru.Cache[string, model.LexerResult]
}

// NewLexerService creates a LexerService remembering up to memoSize results.
// A memoSize of zero or less disables memoization.
func NewLexerService(analyzer driven.LexicalAnalyzer, memoSize int) (*LexerService, error) {
	s := &LexerService{analyzer: analyzer}
	if memoSize <= 0 {
		return s, nil
	}

	memo, err := lru.New[string, model.LexerResult](memoSize)
	if err != nil {
		return nil, fmt.Errorf("create lexer memo: %w", err)
	}
	s.memo = memo

	return s, nil
}

// Lexer analyzes text. Error envelopes and failures are never memoized.
// Memoized results are copied on the way in and out, so callers may modify
// what they receive.
func (s *LexerService) Lexer(ctx context.Context, text string, custom bool) (model.LexerResult, error) {
	key := memoKey(text, custom)
	if s.memo != nil {
		if result, ok := s.memo.Get(key); ok {
			slog.Debug("lexer memo hit", "custom", custom, "text_bytes", len(text))
			return cloneLexerResult(result), nil
		}
	}

	result, err := s.analyzer.Lexer(ctx, text, custom)
	if err != nil {
		return model.LexerResult{}, err
	}

	if s.memo != nil && !result.Failed() {
		s.memo.Add(key, cloneLexerResult(result))
	}

	return result, nil
}

func memoKey(text string, custom bool) string {
	if custom {
		return "c:" + text
	}
	return "s:" + text
}

func cloneLexerResult(r model.LexerResult) model.LexerResult {
	out := model.LexerResult{Fields: cloneMap(r.Fields)}
	if r.Error != nil {
		env := *r.Error
		out.Error = &env
	}
	if r.Lexer != nil {
		lexer := *r.Lexer
		if r.Lexer.Items != nil {
			lexer.Items = make([]model.LexerItem, len(r.Lexer.Items))
			for i, item := range r.Lexer.Items {
				item.LocDetails = cloneStrings(item.LocDetails)
				item.BasicWords = cloneStrings(item.BasicWords)
				lexer.Items[i] = item
			}
		}
		out.Lexer = &lexer
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// cloneMap deep-copies a decoded JSON object.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
