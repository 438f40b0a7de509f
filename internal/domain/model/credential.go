package model

// Credential is a bearer access token issued by the AIP authentication endpoint.
// IssuedAt and ExpiresAt are Unix timestamps in whole seconds.
type Credential struct {
	Token     string
	IssuedAt  int64
	ExpiresAt int64
}

// Valid reports whether the credential may still be presented at time now
// (Unix seconds). A credential expiring at exactly now is still valid; it is
// only stale once now is strictly past ExpiresAt.
func (c *Credential) Valid(now int64) bool {
	if c == nil || c.Token == "" {
		return false
	}
	return now <= c.ExpiresAt
}

// ClientConfig holds the application credentials issued by the AIP console.
// It is supplied once at construction and never mutated afterwards.
type ClientConfig struct {
	AppID     string
	APIKey    string `validate:"required"`
	SecretKey string `validate:"required"`
}
