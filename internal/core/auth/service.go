// internal/core/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/domain"
	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/storage"
)

// Permissões usadas nas rotas de escrita.
const (
	RoleUpload = "upload"
	RoleMeta   = "meta"
)

// TokenTTL é a validade do token de acesso.
const TokenTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("usuário ou senha inválidos")
	ErrUnavailable        = errors.New("erro ao consultar o banco de dados")
)

type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	CreateUser(ctx context.Context, username, password string, roles []string) error
}

type service struct {
	store  storage.Store
	secret []byte
	now    func() time.Time
}

func NewService(store storage.Store, secret []byte) Service {
	return &service{store: store, secret: secret, now: time.Now}
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	// 1. Encontrar o usuário.
	user, err := s.store.FindUser(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		log.WithError(err).Error("Erro ao consultar usuário")
		return "", ErrUnavailable
	}

	// 2. Comparar a senha fornecida com o hash armazenado.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	// 3. Gerar o token JWT com as permissões.
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"roles":    user.Roles,
		"exp":      s.now().Add(TokenTTL).Unix(),
	})

	tokenString, err := claims.SignedString(s.secret)
	if err != nil {
		return "", errors.New("erro ao gerar token de acesso")
	}
	return tokenString, nil
}

// CreateUser grava (ou substitui) um usuário com a senha em bcrypt.
func (s *service) CreateUser(ctx context.Context, username, password string, roles []string) error {
	if username == "" || password == "" {
		return errors.New("usuário e senha são obrigatórios")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("erro ao gerar hash da senha: %w", err)
	}
	return s.store.SaveUser(ctx, domain.User{Username: username, PasswordHash: string(hash), Roles: roles})
}
