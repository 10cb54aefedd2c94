package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/domain"
	"github.com/rutacontrol/backend/internal/service"
)

func TestUserService_Create_HashesPassword(t *testing.T) {
	var stored domain.User
	r := &mockUserRepo{create: func(_ context.Context, u domain.User) (domain.User, error) {
		stored = u
		u.ID = uuid.New()
		return u, nil
	}}
	svc := service.NewUserService(r, nil)

	got, err := svc.Create(context.Background(), service.NewUser{Username: " ana ", Password: "s3cret-pass", RoleID: domain.RoleViewer})

	require.NoError(t, err)
	assert.Equal(t, "ana", got.Username)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.NoError(t, auth.CheckPassword(stored.PasswordHash, "s3cret-pass"))
}

func TestUserService_Create_Validation(t *testing.T) {
	svc := service.NewUserService(&mockUserRepo{}, nil)
	ctx := context.Background()

	cases := []service.NewUser{
		{Username: "", Password: "longenough", RoleID: 1},
		{Username: "ana", Password: "short", RoleID: 1},
		{Username: "ana", Password: "longenough", RoleID: 9},
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestUserService_Login(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	user := domain.User{ID: uuid.New(), Username: "ana", RoleID: domain.RoleDispatcher, PasswordHash: hash}
	r := &mockUserRepo{getByUsername: func(_ context.Context, name string) (domain.User, error) {
		if name != "ana" {
			return domain.User{}, domain.ErrNotFound
		}
		return user, nil
	}}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	svc := service.NewUserService(r, issuer)
	ctx := context.Background()

	token, got, err := svc.Login(ctx, "ana", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDispatcher, claims.RoleID)

	_, _, err = svc.Login(ctx, "ana", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_Delete_Self(t *testing.T) {
	svc := service.NewUserService(&mockUserRepo{}, nil)
	id := uuid.New()

	err := svc.Delete(context.Background(), id, id)

	assert.ErrorIs(t, err, domain.ErrConflict)
}
