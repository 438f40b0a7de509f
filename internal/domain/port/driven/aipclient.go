package driven

import (
	"context"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

// TokenSource yields a currently valid AIP access token, fetching a new one
// when the held credential is missing or expired.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// LexicalAnalyzer defines the driven port for the AIP lexical analysis API.
type LexicalAnalyzer interface {
	// Lexer tokenizes text. custom selects the user-lexicon variant of the
	// endpoint. A service-level failure is returned inside the result, not as err.
	Lexer(ctx context.Context, text string, custom bool) (model.LexerResult, error)
}

// InvoiceRecognizer defines the driven port for the AIP VAT invoice OCR API.
type InvoiceRecognizer interface {
	// VatInvoice extracts invoice fields from the document in params.
	// A service-level failure is returned inside the result, not as err.
	VatInvoice(ctx context.Context, params model.VatInvoiceParams) (model.InvoiceResult, error)
}
