package auth

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/craftable/errx"
)

// Config configuração completa do módulo de autenticação
type Config struct {
	Session   SessionConfig   `json:"session" yaml:"session"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	Audit     AuditConfig     `json:"audit" yaml:"audit"`
}

// SessionConfig configuração da sessão do navegador
type SessionConfig struct {
	SecretKey    string        `json:"secret_key" yaml:"secret_key"`
	CookieName   string        `json:"cookie_name" yaml:"cookie_name"`
	TTL          time.Duration `json:"ttl" yaml:"ttl"`
	Issuer       string        `json:"issuer" yaml:"issuer"`
	SecureCookie bool          `json:"secure_cookie" yaml:"secure_cookie"`
}

// RateLimitConfig configuração do limite de tentativas de login
type RateLimitConfig struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	Window      time.Duration `json:"window" yaml:"window"`
}

// AuditConfig configuração da auditoria de login
type AuditConfig struct {
	Retention time.Duration `json:"retention" yaml:"retention"`
}

// DefaultConfig retorna a configuração padrão
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			CookieName: "campus_sessao",
			TTL:        12 * time.Hour,
			Issuer:     "campus",
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: 5,
			Window:      time.Minute,
		},
		Audit: AuditConfig{
			Retention: 90 * 24 * time.Hour,
		},
	}
}

// Validate valida a configuração
func (c *Config) Validate() error {
	if c.Session.SecretKey == "" {
		return ErrMissingSessionSecret()
	}

	if len(c.Session.SecretKey) < 32 {
		return ErrWeakSessionSecret()
	}

	if c.Session.TTL <= 0 {
		return ErrInvalidSessionTTL()
	}

	if c.RateLimit.MaxAttempts <= 0 || c.RateLimit.Window <= 0 {
		return ErrInvalidRateLimit()
	}

	return nil
}

// Config error codes
var (
	CodeMissingSessionSecret = ErrRegistry.Register("MISSING_SESSION_SECRET", errx.TypeValidation, http.StatusBadRequest, "Session secret key is required")
	CodeWeakSessionSecret    = ErrRegistry.Register("WEAK_SESSION_SECRET", errx.TypeValidation, http.StatusBadRequest, "Session secret key must be at least 32 characters")
	CodeInvalidSessionTTL    = ErrRegistry.Register("INVALID_SESSION_TTL", errx.TypeValidation, http.StatusBadRequest, "Invalid session TTL")
	CodeInvalidRateLimit     = ErrRegistry.Register("INVALID_RATE_LIMIT", errx.TypeValidation, http.StatusBadRequest, "Invalid rate limit configuration")
)

// Helper functions para criar erros de configuração
func ErrMissingSessionSecret() *errx.Error {
	return ErrRegistry.New(CodeMissingSessionSecret)
}

func ErrWeakSessionSecret() *errx.Error {
	return ErrRegistry.New(CodeWeakSessionSecret)
}

func ErrInvalidSessionTTL() *errx.Error {
	return ErrRegistry.New(CodeInvalidSessionTTL)
}

func ErrInvalidRateLimit() *errx.Error {
	return ErrRegistry.New(CodeInvalidRateLimit)
}
