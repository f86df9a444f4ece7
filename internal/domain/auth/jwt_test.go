package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "retailpos/internal/core/context"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "asha", []string{appctx.RoleManager})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "asha", user.Username)
	assert.Equal(t, []string{appctx.RoleManager}, user.Roles)
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret"))
	token, _, err := issuer.GenerateAccessToken("u-1", "", []string{appctx.RoleCashier})
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("other-secret")).ValidateToken(token)
	assert.Error(t, err)

	cfg := DefaultJWTConfig("secret")
	cfg.Issuer = "someone-else"
	_, err = NewJWTService(cfg).ValidateToken(token)
	assert.Error(t, err)

	expired := DefaultJWTConfig("secret")
	expired.AccessTokenTTL = -time.Minute
	old, _, err := NewJWTService(expired).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(old)
	assert.Error(t, err)

	_, err = issuer.ValidateToken("not-a-token")
	assert.Error(t, err)
}
