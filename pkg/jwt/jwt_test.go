package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/hotel-inventario-api/pkg/jwt"
)

const (
	secret = "test-secret"
	issuer = "hotel-inventario-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "hotel-1", "gerente", issuer, 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(secret, issuer, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "hotel-1", claims.HotelID)
	assert.Equal(t, "gerente", claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := pkgjwt.Generate(secret, "u1", "hotel-1", "admin", issuer, 60)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(secret, "u1", "hotel-1", "admin", issuer, -1)
	require.NoError(t, err)
	noHotel, err := pkgjwt.Generate(secret, "u1", "", "admin", issuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", issuer, valid)
	assert.Error(t, err, "secret incorrecto")

	_, err = pkgjwt.Parse(secret, "otro-emisor", valid)
	assert.Error(t, err, "emisor distinto")

	_, err = pkgjwt.Parse(secret, issuer, expired)
	assert.Error(t, err, "token expirado")

	_, err = pkgjwt.Parse(secret, issuer, noHotel)
	assert.Error(t, err, "sin hotel")

	_, err = pkgjwt.Generate("", "u1", "hotel-1", "admin", issuer, 60)
	assert.Error(t, err)
}
