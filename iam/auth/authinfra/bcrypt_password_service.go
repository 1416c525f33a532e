package authinfra

import (
	"github.com/nexaedu/campus/iam/user"
	"golang.org/x/crypto/bcrypt"
)

// BcryptPasswordService implementação do serviço de senhas usando bcrypt
type BcryptPasswordService struct {
	cost int
}

// NewBcryptPasswordService cria uma nova instância do serviço de senhas
func NewBcryptPasswordService() user.PasswordService {
	return &BcryptPasswordService{
		cost: bcrypt.DefaultCost,
	}
}

// HashPassword gera o hash de uma senha
func (s *BcryptPasswordService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifica uma senha contra o hash armazenado
func (s *BcryptPasswordService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
