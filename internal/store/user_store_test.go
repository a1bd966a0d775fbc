package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pneumoscan-server/internal/models"
	"pneumoscan-server/internal/store"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	users := store.NewUserStore(db)

	created, err := users.CreateUser("jane", "s3cretpass", models.RolePatient, "Jane Doe", "jane@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEqual(t, "s3cretpass", created.Password, "password must be stored hashed")

	got, err := users.Authenticate("jane", "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, models.RolePatient, got.Role)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	users := store.NewUserStore(db)

	_, err := users.CreateUser("jane", "s3cretpass", models.RolePatient, "Jane Doe", "jane@example.com")
	require.NoError(t, err)

	_, err = users.CreateUser("jane", "otherpass", models.RoleDoctor, "Other Jane", "other@example.com")
	require.ErrorIs(t, err, store.ErrDuplicateUsername)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	db := newTestDB(t)
	users := store.NewUserStore(db)

	_, err := users.CreateUser("jane", "s3cretpass", models.RolePatient, "Jane Doe", "jane@example.com")
	require.NoError(t, err)

	_, err = users.Authenticate("jane", "wrongpass")
	require.ErrorIs(t, err, store.ErrInvalidCredentials)

	_, err = users.Authenticate("nobody", "s3cretpass")
	require.ErrorIs(t, err, store.ErrInvalidCredentials)
}
