package auth

import (
	"path/filepath"
	"testing"

	"github.com/arnavshah/autoschedule-api/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACKeyRoundTrip(t *testing.T) {
	key := GenerateHMACKey("secret", "ios.client")

	clientID, err := VerifyHMACKey("secret", key)
	require.NoError(t, err)
	assert.Equal(t, "ios.client", clientID)

	_, err = VerifyHMACKey("other-secret", key)
	assert.Error(t, err)

	_, err = VerifyHMACKey("secret", "no-signature")
	assert.Error(t, err)

	_, err = VerifyHMACKey("", key)
	assert.Error(t, err)
}

func TestVerifyAccessToken(t *testing.T) {
	assert.True(t, VerifyAccessToken("tok", "tok"))
	assert.False(t, VerifyAccessToken("tok", "tok2"))
	assert.False(t, VerifyAccessToken("", ""))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("jwt-secret", "admin")
	require.NoError(t, err)

	claims, err := VerifyToken("jwt-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = VerifyToken("wrong", token)
	assert.Error(t, err)

	_, err = CreateToken("", "admin")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("abc"))
}

func TestEnsureAdminExists(t *testing.T) {
	db, err := database.InitDB(database.Config{DataPath: filepath.Join(t.TempDir(), "auth.db")})
	require.NoError(t, err)

	_, err = EnsureAdminExists(db, "root", "")
	assert.Error(t, err, "an empty password must not create an admin")

	created, err := EnsureAdminExists(db, "root", "hunter22")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdminExists(db, "someone-else", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	var user database.MasterUser
	require.NoError(t, db.Where("username = ?", "root").First(&user).Error)
	assert.True(t, CheckPasswordHash("hunter22", user.PasswordHash))
}
