package port

import "github.com/MikeRez0/smmrefund/internal/core/domain"

type TokenPayload struct {
	Operator string
}

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock
type TokenService interface {
	// Login checks the operator secret and issues a token.
	Login(operator, secret string) (string, error)
	CreateToken(operator *domain.Operator) (string, error)
	VerifyToken(token string) (*TokenPayload, error)
}
