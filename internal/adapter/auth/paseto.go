package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/MikeRez0/smmrefund/internal/core/port"
)

const defaultTTL = 12 * time.Hour

type PasetoToken struct {
	parser *paseto.Parser
	key    *paseto.V4SymmetricKey
	secret []byte
	ttl    time.Duration
}

// New derives the token key from the operator secret so issued tokens stay
// valid across restarts.
func New(cfg *config.Admin) (*PasetoToken, error) {
	if cfg.Secret == "" {
		return nil, errors.New("operator secret is empty")
	}

	sum := sha256.Sum256([]byte("paseto:" + cfg.Secret))
	key, err := paseto.V4SymmetricKeyFromBytes(sum[:])
	if err != nil {
		return nil, fmt.Errorf("token key: %w", err)
	}
	parser := paseto.NewParser()

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &PasetoToken{
		parser: &parser,
		key:    &key,
		secret: []byte(cfg.Secret),
		ttl:    ttl,
	}, nil
}

func (p *PasetoToken) Login(operator, secret string) (string, error) {
	if operator == "" || subtle.ConstantTimeCompare([]byte(secret), p.secret) != 1 {
		return "", domain.ErrInvalidCredentials
	}
	return p.CreateToken(&domain.Operator{Name: operator})
}

func (p *PasetoToken) CreateToken(operator *domain.Operator) (string, error) {
	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(p.ttl))

	payload := port.TokenPayload{Operator: operator.Name}
	err := token.Set("payload", payload)
	if err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(*p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(*p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get("payload", &payload)
	if err != nil || payload.Operator == "" {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}

var _ port.TokenService = (*PasetoToken)(nil)
