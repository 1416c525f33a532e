package iam

import (
	"net/http"

	"github.com/Abraxas-365/craftable/errx"
)

// ============================================================================
// Error Registry - Registro de erros do módulo IAM
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

// Códigos de erro do módulo IAM
var (
	// Erros comuns
	CodeUnauthorized   = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Não autenticado")
	CodeAccessDenied   = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Acesso negado")
	CodeInvalidSession = ErrRegistry.Register("INVALID_SESSION", errx.TypeAuthorization, http.StatusUnauthorized, "Sessão inválida ou expirada")
)

// Helper functions para criar erros comuns
func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}

func ErrInvalidSession() *errx.Error {
	return ErrRegistry.New(CodeInvalidSession)
}
