package token

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "12345678901234567890123456789012"

func TestPasetoMakerRoundTrip(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	userID, tenantID := uuid.New(), uuid.New()
	tok, err := maker.CreateToken(userID, tenantID, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tok, "v2.local."))

	payload, err := maker.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, tenantID, payload.TenantID)
	assert.WithinDuration(t, payload.IssuedAt.Add(time.Minute), payload.ExpiredAt, time.Second)
}

func TestPasetoMakerRejectsExpiredToken(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	tok, err := maker.CreateToken(uuid.New(), uuid.New(), time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = maker.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoMakerRejectsForeignKey(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)
	other, err := NewPasetoMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	tok, err := other.CreateToken(uuid.New(), uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrExpired)
}

func TestPasetoMakerKeepsMissingTenant(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	tok, err := maker.CreateToken(uuid.New(), uuid.Nil, time.Minute)
	require.NoError(t, err)

	payload, err := maker.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, payload.TenantID, "tenant selection happens after login")

	_, err = maker.CreateToken(uuid.Nil, uuid.New(), time.Minute)
	assert.Error(t, err)
}

func TestNewPasetoMakerKeySize(t *testing.T) {
	_, err := NewPasetoMaker("short")
	assert.Error(t, err)
}
