package services

import (
	"testing"

	"github.com/navitadamayantisyarif/pbl311-sub000/config"
	"github.com/navitadamayantisyarif/pbl311-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTService() InterfaceJWTService {
	return NewJWTService(&config.Config{JWTSecretKey: "test-secret"})
}

func TestGenerateAndExtractPrincipal(t *testing.T) {
	svc := newJWTService()

	token, err := svc.GenerateToken(42, models.UserRoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	principal, err := svc.ExtractPrincipal(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, principal.UserID)
	assert.Equal(t, models.UserRoleAdmin, principal.Role)
}

func TestExtractPrincipalRejectsTamperedToken(t *testing.T) {
	svc := newJWTService()

	token, err := svc.GenerateToken(42, models.UserRoleUser)
	require.NoError(t, err)

	_, err = svc.ExtractPrincipal(token + "x")
	assert.Error(t, err)

	_, err = svc.ExtractPrincipal("not-a-token")
	assert.Error(t, err)
}

func TestExtractPrincipalRejectsWrongSecret(t *testing.T) {
	token, err := newJWTService().GenerateToken(42, models.UserRoleUser)
	require.NoError(t, err)

	other := NewJWTService(&config.Config{JWTSecretKey: "another-secret"})
	_, err = other.ExtractPrincipal(token)
	assert.Error(t, err)
}
