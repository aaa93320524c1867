package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/auth"
	"ecommerce-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHashesPassword(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	u := env.register(t, " A@B.com ", "0123456789", "user")

	stored, err := env.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.NotEqual(t, "12345678", stored.Password)
	assert.True(t, auth.CheckPassword(stored.Password, "12345678"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	env.register(t, "a@b.com", "0123456789", "user")

	_, err := env.userSvc.Register(context.Background(), RegisterInput{
		Firstname: "B", Lastname: "C", Email: "A@b.com", Mobile: "0999999999",
		Address: "X", Password: "12345678", Role: "user",
	})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestRegisterRejectsInput(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	ctx := context.Background()

	_, err := env.userSvc.Register(ctx, RegisterInput{Email: "x@y.com", Password: "short", Role: "user"})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = env.userSvc.Register(ctx, RegisterInput{Email: "x@y.com", Password: "12345678", Role: "root"})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	_, err = env.userSvc.Register(ctx, RegisterInput{
		Firstname: "A", Lastname: "B", Email: "x@y.com", Mobile: "0123456789",
		Address: "X", Password: strings.Repeat("a", 80), Role: "user",
	})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "password must be at most 72 bytes", apperr.Message(err))
}

func TestLoginIssuesTokensWithStoredRole(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	admin := env.register(t, "admin@b.com", "0123456789", "admin")

	session, err := env.userSvc.Login(context.Background(), "ADMIN@b.com", "12345678")
	require.NoError(t, err)

	id, err := env.tokens.VerifyAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id.UserID())
	assert.Equal(t, models.RoleAdmin, id.Role())

	stored, err := env.users.FindByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, session.RefreshToken, stored.RefreshToken)
}

func TestLoginGenericFailure(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	env.register(t, "a@b.com", "0123456789", "user")
	ctx := context.Background()

	_, wrongPassword := env.userSvc.Login(ctx, "a@b.com", "wrong-password")
	_, unknownEmail := env.userSvc.Login(ctx, "nobody@b.com", "12345678")

	assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, apperr.Message(wrongPassword), apperr.Message(unknownEmail))
}

func TestLoginBlockedUser(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	u := env.register(t, "a@b.com", "0123456789", "user")
	_, err := env.userSvc.Update(context.Background(), u.ID, models.UserUpdate{IsBlocked: ptr(true)})
	require.NoError(t, err)

	_, err = env.userSvc.Login(context.Background(), "a@b.com", "12345678")
	assert.ErrorIs(t, err, apperr.ErrAccountBlocked)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	env.register(t, "a@b.com", "0123456789", "user")
	ctx := context.Background()

	first, err := env.userSvc.Login(ctx, "a@b.com", "12345678")
	require.NoError(t, err)

	second, err := env.userSvc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEmpty(t, second.AccessToken)

	_, err = env.userSvc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)

	_, err = env.userSvc.Refresh(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrMissingToken)
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	u := env.register(t, "a@b.com", "0123456789", "user")
	ctx := context.Background()

	session, err := env.userSvc.Login(ctx, "a@b.com", "12345678")
	require.NoError(t, err)
	require.NoError(t, env.userSvc.Logout(ctx, u.ID))

	_, err = env.userSvc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	env.register(t, "a@b.com", "0123456789", "user")
	ctx := context.Background()

	require.NoError(t, env.userSvc.ForgotPassword(ctx, "nobody@b.com"))
	assert.Empty(t, env.mailer.sent)

	require.NoError(t, env.userSvc.ForgotPassword(ctx, "a@b.com"))
	require.Len(t, env.mailer.sent, 1)
	mail := env.mailer.sent[0]
	assert.Equal(t, "a@b.com", mail.to)
	require.True(t, strings.HasPrefix(mail.link, "http://shop.test/reset-password/"))
	token := strings.TrimPrefix(mail.link, "http://shop.test/reset-password/")

	err := env.userSvc.ResetPassword(ctx, token, "short")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	err = env.userSvc.ResetPassword(ctx, token, strings.Repeat("a", 80))
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	require.NoError(t, env.userSvc.ResetPassword(ctx, token, "new-password"))

	_, err = env.userSvc.Login(ctx, "a@b.com", "12345678")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	_, err = env.userSvc.Login(ctx, "a@b.com", "new-password")
	assert.NoError(t, err)

	err = env.userSvc.ResetPassword(ctx, token, "another-password")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestPasswordResetExpires(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	env.register(t, "a@b.com", "0123456789", "user")
	ctx := context.Background()

	require.NoError(t, env.userSvc.ForgotPassword(ctx, "a@b.com"))
	token := strings.TrimPrefix(env.mailer.sent[0].link, "http://shop.test/reset-password/")

	env.userSvc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	err := env.userSvc.ResetPassword(ctx, token, "new-password")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
}

func TestListUsersSearchAndPaging(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	ctx := context.Background()
	for i, name := range []string{"Alice", "Alicia", "Bob"} {
		_, err := env.userSvc.Register(ctx, RegisterInput{
			Firstname: name, Lastname: "Smith",
			Email: name + "@b.com", Mobile: "012345678" + string(rune('0'+i)),
			Address: "X", Password: "12345678", Role: "user",
		})
		require.NoError(t, err)
	}

	page, err := env.userSvc.List(ctx, models.UserFilter{Search: "ALI", Page: models.Page{Number: 1, Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Alicia", page.Items[0].Firstname)
}

func TestUpdateUserUniqueness(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	env.register(t, "a@b.com", "0123456789", "user")
	u := env.register(t, "c@d.com", "0987654321", "user")

	_, err := env.userSvc.Update(context.Background(), u.ID, models.UserUpdate{Email: ptr("A@B.com")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = env.userSvc.Update(context.Background(), missingID, models.UserUpdate{Address: ptr("Y")})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t, OrderServiceConfig{})
	u := env.register(t, "a@b.com", "0123456789", "user")
	ctx := context.Background()

	require.NoError(t, env.userSvc.Delete(ctx, u.ID))
	_, err := env.userSvc.Get(ctx, u.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(env.userSvc.Delete(ctx, u.ID)))
}
