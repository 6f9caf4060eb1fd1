package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/tests"
)

func TestService_Register(t *testing.T) {
	repos := testutil.OpenRepos()
	svc := user.NewService(repos.Users)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Name: "Ana", Email: "ana@test.cd"})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.False(t, usr.CreatedAt.IsZero())
	assert.True(t, usr.LastLogin.IsZero())

	_, err = svc.Register(ctx, user.NewUser{Name: "Ana 2", Email: "ana@test.cd"})
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, user.ErrEmailExists.Error(), verr.FieldMap()["email"])
}

func TestService_SignIn(t *testing.T) {
	repos := testutil.OpenRepos()
	svc := user.NewService(repos.Users)
	ctx := context.Background()

	t.Run("unverified email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, user.Identity{Email: "ana@test.cd", Name: "Ana"})
		assert.Equal(t, user.ErrEmailNotVerified, err)
	})

	var first user.User
	t.Run("first sign in registers", func(t *testing.T) {
		usr, err := svc.SignIn(ctx, user.Identity{Email: " Ana@Test.cd", EmailVerified: true, Name: "Ana", Picture: "https://img.test/ana.png"})
		require.NoError(t, err)
		assert.Equal(t, "ana@test.cd", usr.Email)
		assert.Equal(t, "Ana", usr.Name)
		assert.Equal(t, "https://img.test/ana.png", usr.Image)
		assert.False(t, usr.LastLogin.IsZero())
		first = usr
	})

	t.Run("next sign in keeps the user", func(t *testing.T) {
		usr, err := svc.SignIn(ctx, user.Identity{Email: "ana@test.cd", EmailVerified: true, Name: "Ana María"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, usr.ID)
		assert.Equal(t, "Ana", usr.Name, "an existing name is kept")
		assert.Equal(t, "https://img.test/ana.png", usr.Image, "an empty picture does not clear the image")
		assert.False(t, usr.LastLogin.Before(first.LastLogin))
	})

	t.Run("pre-registered author", func(t *testing.T) {
		pre := testutil.CreateUser(t, repos.Users, "", "bob@test.cd")
		usr, err := svc.SignIn(ctx, user.Identity{Email: "bob@test.cd", EmailVerified: true, Name: "Bob"})
		require.NoError(t, err)
		assert.Equal(t, pre.ID, usr.ID)
		assert.Equal(t, "Bob", usr.Name)
	})
}

func TestService_GetByEmail(t *testing.T) {
	repos := testutil.OpenRepos()
	svc := user.NewService(repos.Users)
	usr := testutil.CreateUser(t, repos.Users, "Ana", "ana@test.cd")

	got, err := svc.GetByEmail(context.Background(), " ANA@test.cd ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.GetByEmail(context.Background(), "lol@test.cd")
	assert.ErrorIs(t, err, user.ErrNotFound)
}
