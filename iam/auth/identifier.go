package auth

import (
	"regexp"
	"strings"
)

// emailShape reconhece o formato de e-mail aceito no login. Quem não casa
// com esse formato é tratado como CPF.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Identifier é o identificador de login já normalizado. A mesma
// normalização vale para a busca do usuário e para a chave do rate limit;
// divergir entre as duas abriria um bypass do limite por variação de
// grafia ("João@X.com" vs "joao@x.com", "123.456.789-00" vs "12345678900").
type Identifier struct {
	Value   string
	IsEmail bool
}

// NormalizeIdentifier normaliza o identificador informado no login:
// e-mails em minúsculas, CPFs reduzidos a dígitos.
func NormalizeIdentifier(raw string) Identifier {
	trimmed := strings.TrimSpace(raw)
	if emailShape.MatchString(trimmed) {
		return Identifier{Value: strings.ToLower(trimmed), IsEmail: true}
	}

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return Identifier{Value: b.String(), IsEmail: false}
}

// RateLimitKey monta a chave do rate limit para o identificador e o
// endereço do cliente
func (i Identifier) RateLimitKey(clientAddr string) string {
	return i.Value + "|" + clientAddr
}
