package service

import (
	"testing"
	"time"

	"task_tracker/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	j := NewJWT("test-secret")
	userID := uuid.New()

	token, err := j.Generate(userID, time.Hour)
	require.NoError(t, err)

	got, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("test-secret")
	j.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := j.Generate(uuid.New(), time.Hour)
	require.NoError(t, err)

	j.now = time.Now
	_, err = j.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewJWT("a").Generate(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWT("b").Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWT_NonUUIDSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "12345",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewJWT("s").Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestJWT_Empty(t *testing.T) {
	_, err := NewJWT("s").Parse("")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
