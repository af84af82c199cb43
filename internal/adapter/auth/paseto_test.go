package auth

import (
	"testing"
	"time"

	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasetoToken_Login(t *testing.T) {
	ts, err := New(&config.Admin{Secret: "s3cret"})
	require.NoError(t, err)

	token, err := ts.Login("alice", "s3cret")
	require.NoError(t, err)

	payload, err := ts.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload.Operator)

	_, err = ts.Login("alice", "wrong")
	assert.Equal(t, domain.ErrInvalidCredentials, err)
	_, err = ts.Login("", "s3cret")
	assert.Equal(t, domain.ErrInvalidCredentials, err)
}

func TestPasetoToken_SurvivesRestart(t *testing.T) {
	first, err := New(&config.Admin{Secret: "s3cret"})
	require.NoError(t, err)
	token, err := first.CreateToken(&domain.Operator{Name: "bob"})
	require.NoError(t, err)

	second, err := New(&config.Admin{Secret: "s3cret"})
	require.NoError(t, err)
	payload, err := second.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", payload.Operator)

	other, err := New(&config.Admin{Secret: "different"})
	require.NoError(t, err)
	_, err = other.VerifyToken(token)
	assert.Equal(t, domain.ErrInvalidToken, err)
}

func TestPasetoToken_Expired(t *testing.T) {
	ts, err := New(&config.Admin{Secret: "s3cret", TokenTTL: time.Nanosecond})
	require.NoError(t, err)
	token, err := ts.CreateToken(&domain.Operator{Name: "bob"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ts.VerifyToken(token)
	assert.Equal(t, domain.ErrInvalidToken, err)
}

func TestNew_EmptySecret(t *testing.T) {
	_, err := New(&config.Admin{})
	assert.Error(t, err)
}
