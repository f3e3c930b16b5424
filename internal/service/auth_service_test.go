package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/dom/uptask-server/internal/repository/postgres"
	"github.com/dom/uptask-server/internal/service"
	"github.com/dom/uptask-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	db       *testutil.TestDB
	repos    *repository.Repositories
	sessions *auth.SessionCodec
	notifier *testutil.RecordingNotifier
	svc      *service.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	cfg := testutil.TestConfig()
	repos := postgres.NewRepositories(testDB.DB)
	sessions := auth.NewSessionCodec(cfg.JWTSecret, cfg.SessionValidity())
	notifier := testutil.NewRecordingNotifier()

	return &authFixture{
		db:       testDB,
		repos:    repos,
		sessions: sessions,
		notifier: notifier,
		svc:      service.NewAuthService(repos, postgres.NewTransactor(testDB.DB), sessions, notifier, cfg.TokenTTL),
	}
}

func (f *authFixture) reset(t *testing.T) {
	f.db.Truncate(t)
	f.notifier.Reset()
	f.svc.SetClock(time.Now)
}

func register(t *testing.T, f *authFixture, email string) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), service.RegisterInput{
		Name:     "Ana",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("creates a pending account and mails a token", func(t *testing.T) {
		f.reset(t)

		user := register(t, f, "  ana@example.com ")

		assert.False(t, user.Confirmed)
		assert.Equal(t, "ana@example.com", user.Email)

		stored, err := f.repos.User.GetByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
		assert.NotEqual(t, "password123", stored.PasswordHash)

		value := f.notifier.LastConfirmationToken("ana@example.com")
		require.NotEmpty(t, value)
		token, err := f.repos.Token.GetByValue(ctx, value, domain.TokenPurposeConfirmAccount)
		require.NoError(t, err)
		assert.Equal(t, user.ID, token.UserID)
	})

	t.Run("second registration with the same email conflicts", func(t *testing.T) {
		f.reset(t)
		register(t, f, "ana@example.com")

		_, err := f.svc.Register(ctx, service.RegisterInput{Name: "Other", Email: " ana@example.com ", Password: "password456"})
		assert.ErrorIs(t, err, domain.ErrUserExists)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("emails differing only in case are distinct accounts", func(t *testing.T) {
		f.reset(t)
		lower := register(t, f, "ana@example.com")

		upper, err := f.svc.Register(ctx, service.RegisterInput{Name: "Other", Email: "ANA@example.com", Password: "password456"})
		require.NoError(t, err)
		assert.NotEqual(t, lower.ID, upper.ID)
		assert.Equal(t, "ANA@example.com", upper.Email)

		got, err := f.repos.User.GetByEmail(ctx, "ANA@example.com")
		require.NoError(t, err)
		assert.Equal(t, upper.ID, got.ID)
	})

	t.Run("concurrent registrations admit exactly one", func(t *testing.T) {
		f.reset(t)

		const n = 5
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.svc.Register(ctx, service.RegisterInput{
					Name:     "Racer",
					Email:    "race@example.com",
					Password: "password123",
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrUserExists)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("notification failure keeps the account", func(t *testing.T) {
		f.reset(t)
		f.notifier.FailWith(errors.New("smtp down"))

		user := register(t, f, "ana@example.com")

		_, err := f.repos.User.GetByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Len(t, f.notifier.Confirmations("ana@example.com"), 1)
	})
}

func TestAuthService_ConfirmAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("confirms once", func(t *testing.T) {
		f.reset(t)
		user := register(t, f, "ana@example.com")
		value := f.notifier.LastConfirmationToken(user.Email)

		confirmed, err := f.svc.ConfirmAccount(ctx, value)
		require.NoError(t, err)
		assert.True(t, confirmed.Confirmed)

		stored, err := f.repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.Confirmed)

		_, err = f.svc.ConfirmAccount(ctx, value)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("using one token retires the others", func(t *testing.T) {
		f.reset(t)
		user := register(t, f, "ana@example.com")
		first := f.notifier.LastConfirmationToken(user.Email)
		require.NoError(t, f.svc.RequestConfirmationCode(ctx, user.Email))
		second := f.notifier.LastConfirmationToken(user.Email)
		require.NotEqual(t, first, second)

		_, err := f.svc.ConfirmAccount(ctx, first)
		require.NoError(t, err)

		_, err = f.repos.Token.GetByValue(ctx, second, domain.TokenPurposeConfirmAccount)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("expired token is unknown and removed", func(t *testing.T) {
		f.reset(t)
		user := register(t, f, "ana@example.com")
		value := f.notifier.LastConfirmationToken(user.Email)

		f.svc.SetClock(func() time.Time { return time.Now().Add(11 * time.Minute) })

		_, err := f.svc.ConfirmAccount(ctx, value)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)

		_, err = f.repos.Token.GetByValue(ctx, value, domain.TokenPurposeConfirmAccount)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)

		stored, err := f.repos.User.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, stored.Confirmed)
	})

	t.Run("reset token cannot confirm", func(t *testing.T) {
		f.reset(t)
		user, _ := testutil.NewUserBuilder().Unconfirmed().Build(t, f.db.DB)
		value := testutil.CreateToken(t, f.db.DB, user, domain.TokenPurposeResetPassword, time.Now())

		_, err := f.svc.ConfirmAccount(ctx, value)
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	})

	t.Run("unknown and empty tokens", func(t *testing.T) {
		f.reset(t)
		_, err := f.svc.ConfirmAccount(ctx, "AAAAAAAAAAAAAAAAAAAAAAAAAA")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = f.svc.ConfirmAccount(ctx, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAuthService_RequestConfirmationCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func() string
		wantErr error
	}{
		{
			name: "pending account gets a new token",
			setup: func() string {
				user, _ := testutil.NewUserBuilder().Unconfirmed().Build(t, f.db.DB)
				return user.Email
			},
		},
		{
			name:    "unknown email",
			setup:   func() string { return "nobody@example.com" },
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "already confirmed",
			setup: func() string {
				user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
				return user.Email
			},
			wantErr: domain.ErrAlreadyConfirmed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.reset(t)
			email := tt.setup()

			err := f.svc.RequestConfirmationCode(ctx, email)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.notifier.Confirmations(email))
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.notifier.Confirmations(email), 1)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("confirmed user gets a session", func(t *testing.T) {
		f.reset(t)
		user, password := testutil.NewUserBuilder().Build(t, f.db.DB)

		token, err := f.svc.Login(ctx, user.Email, password)
		require.NoError(t, err)

		subject, err := f.sessions.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, subject)
	})

	t.Run("pending user gets a fresh confirmation token", func(t *testing.T) {
		f.reset(t)
		user, password := testutil.NewUserBuilder().Unconfirmed().Build(t, f.db.DB)

		token, err := f.svc.Login(ctx, user.Email, password)
		assert.Empty(t, token)
		assert.ErrorIs(t, err, domain.ErrAccountNotConfirmed)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		value := f.notifier.LastConfirmationToken(user.Email)
		require.NotEmpty(t, value)
		_, err = f.repos.Token.GetByValue(ctx, value, domain.TokenPurposeConfirmAccount)
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		f.reset(t)
		user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

		_, err := f.svc.Login(ctx, user.Email, "wrongpassword")
		assert.ErrorIs(t, err, domain.ErrIncorrectPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		f.reset(t)
		_, err := f.svc.Login(ctx, "nobody@example.com", "password123")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("reset flow", func(t *testing.T) {
		f.reset(t)
		user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

		require.NoError(t, f.svc.ForgotPassword(ctx, user.Email))
		value := f.notifier.LastResetToken(user.Email)
		require.NotEmpty(t, value)

		require.NoError(t, f.svc.ValidateResetToken(ctx, value))
		// Validation does not consume.
		require.NoError(t, f.svc.ValidateResetToken(ctx, value))

		require.NoError(t, f.svc.UpdatePasswordWithToken(ctx, value, "brandnewpass"))

		_, err := f.svc.Login(ctx, user.Email, "brandnewpass")
		assert.NoError(t, err)

		err = f.svc.UpdatePasswordWithToken(ctx, value, "anotherpass1")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
		assert.ErrorIs(t, f.svc.ValidateResetToken(ctx, value), domain.ErrTokenNotFound)
	})

	t.Run("confirmation token cannot reset", func(t *testing.T) {
		f.reset(t)
		user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
		value := testutil.CreateToken(t, f.db.DB, user, domain.TokenPurposeConfirmAccount, time.Now())

		assert.ErrorIs(t, f.svc.ValidateResetToken(ctx, value), domain.ErrTokenNotFound)
	})

	t.Run("unknown email", func(t *testing.T) {
		f.reset(t)
		assert.ErrorIs(t, f.svc.ForgotPassword(ctx, "nobody@example.com"), domain.ErrUserNotFound)
	})
}

func TestAuthService_Profile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("update profile", func(t *testing.T) {
		f.reset(t)
		user, _ := testutil.NewUserBuilder().Build(t, f.db.DB)
		other, _ := testutil.NewUserBuilder().Build(t, f.db.DB)

		_, err := f.svc.UpdateProfile(ctx, user.ID, service.ProfileInput{Name: "New", Email: other.Email})
		assert.ErrorIs(t, err, domain.ErrEmailInUse)

		// Keeping one's own email is fine.
		updated, err := f.svc.UpdateProfile(ctx, user.ID, service.ProfileInput{Name: "New", Email: user.Email})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Name)

		updated, err = f.svc.UpdateProfile(ctx, user.ID, service.ProfileInput{Name: "New", Email: "fresh@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "fresh@example.com", updated.Email)
	})

	t.Run("change password with the current one", func(t *testing.T) {
		f.reset(t)
		user, password := testutil.NewUserBuilder().Build(t, f.db.DB)

		err := f.svc.UpdateCurrentPassword(ctx, user.ID, "wrongpassword", "newpassword1")
		assert.ErrorIs(t, err, domain.ErrIncorrectPassword)

		require.NoError(t, f.svc.UpdateCurrentPassword(ctx, user.ID, password, "newpassword1"))

		assert.ErrorIs(t, f.svc.CheckPassword(ctx, user.ID, password), domain.ErrIncorrectPassword)
		assert.NoError(t, f.svc.CheckPassword(ctx, user.ID, "newpassword1"))
	})
}

func TestAuthService_PurgeExpiredTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.reset(t)

	user, _ := testutil.NewUserBuilder().Unconfirmed().Build(t, f.db.DB)
	stale := testutil.CreateToken(t, f.db.DB, user, domain.TokenPurposeConfirmAccount, time.Now().Add(-time.Hour))
	fresh := testutil.CreateToken(t, f.db.DB, user, domain.TokenPurposeConfirmAccount, time.Now())

	n, err := f.svc.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.repos.Token.GetByValue(ctx, stale, domain.TokenPurposeConfirmAccount)
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	_, err = f.repos.Token.GetByValue(ctx, fresh, domain.TokenPurposeConfirmAccount)
	assert.NoError(t, err)
}
