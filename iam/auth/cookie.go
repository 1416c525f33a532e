package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nexaedu/campus/iam"
	"github.com/nexaedu/campus/pkg/kernel"
)

// SessionCookieCodec assina o identificador de sessão que viaja no cookie
// do navegador. O cookie carrega apenas o id opaco dentro de um JWT HS256:
// o estado fica todo do lado do servidor, mas o identificador é à prova de
// adulteração.
type SessionCookieCodec struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
}

// NewSessionCookieCodec cria um novo codec de cookie de sessão
func NewSessionCookieCodec(secretKey string, ttl time.Duration, issuer string) *SessionCookieCodec {
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	if issuer == "" {
		issuer = "campus"
	}
	return &SessionCookieCodec{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		issuer:    issuer,
	}
}

// TTL retorna a validade configurada do cookie
func (c *SessionCookieCodec) TTL() time.Duration { return c.ttl }

// Encode assina o identificador de sessão
func (c *SessionCookieCodec) Encode(id kernel.SessionID) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   id.String(),
		Audience:  []string{"campus-sessao"},
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.secretKey)
	if err != nil {
		return "", ErrSessionFailure().WithDetail("error", err.Error())
	}
	return signed, nil
}

// Decode valida a assinatura e extrai o identificador de sessão
func (c *SessionCookieCodec) Decode(tokenString string) (kernel.SessionID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		// Verificar o método de assinatura
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", iam.ErrInvalidSession()
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", iam.ErrInvalidSession()
	}

	return kernel.NewSessionID(claims.Subject), nil
}
