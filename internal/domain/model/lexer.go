package model

// LexerItem is one token produced by lexical analysis. Byte offsets and
// lengths refer to the GBK or UTF-8 encoding requested from the service.
type LexerItem struct {
	ByteLength int      `json:"byteLength"`
	ByteOffset int      `json:"byteOffset"`
	Formal     string   `json:"formal"`
	Item       string   `json:"item"`
	NE         string   `json:"ne"`
	POS        string   `json:"pos"`
	URI        string   `json:"uri"`
	LocDetails []string `json:"locDetails"`
	BasicWords []string `json:"basicWords"`
}

// Lexer is a successful lexical analysis of Text.
type Lexer struct {
	LogID int64       `json:"logId"`
	Text  string      `json:"text"`
	Items []LexerItem `json:"items"`
}

// LexerResult is either a Lexer or an ErrorEnvelope, never both. Fields holds
// the full normalized response for callers that need keys not modelled above.
type LexerResult struct {
	Lexer  *Lexer
	Error  *ErrorEnvelope
	Fields map[string]any
}

// Failed reports whether the service answered with an error envelope.
func (r LexerResult) Failed() bool {
	return r.Error != nil
}

// Err returns the error envelope as an error, or nil on success.
func (r LexerResult) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}
