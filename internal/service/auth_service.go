package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/dom/uptask-server/internal/auth"
	"github.com/dom/uptask-server/internal/domain"
	"github.com/dom/uptask-server/internal/notify"
	"github.com/dom/uptask-server/internal/repository"
	"github.com/google/uuid"
)

// AuthService drives an account through registration, confirmation, login
// and password changes.
//
// Every paired write runs in one transaction. Notifications are sent after
// the commit; a failed notification is logged and does not undo anything.
type AuthService struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	tx       repository.Transactor
	sessions *auth.SessionCodec
	notifier notify.Notifier
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(
	repos *repository.Repositories,
	tx repository.Transactor,
	sessions *auth.SessionCodec,
	notifier notify.Notifier,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:    repos.User,
		tokens:   repos.Token,
		tx:       tx,
		sessions: sessions,
		notifier: notifier,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for token issue and expiry.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type ProfileInput struct {
	Name  string
	Email string
}

// Register creates an unconfirmed account together with its confirmation
// token and mails the token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := trimEmail(input.Email)

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrUserExists
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
	}
	token := s.newToken(user.ID, domain.TokenPurposeConfirmAccount)

	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		if err := repos.User.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return domain.ErrUserExists
			}
			return err
		}
		return repos.Token.Create(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	s.send(ctx, "Register", s.notifier.SendConfirmation, user, token)
	return user, nil
}

// ConfirmAccount consumes a confirmation token and confirms its owner.
func (s *AuthService) ConfirmAccount(ctx context.Context, value string) (*domain.User, error) {
	return s.redeem(ctx, value, domain.TokenPurposeConfirmAccount, func(repos *repository.Repositories, user *domain.User) error {
		user.Confirmed = true
		return repos.User.Update(ctx, user)
	})
}

// RequestConfirmationCode mails a new confirmation token to a pending account.
// Earlier tokens stay valid until one of them is used.
func (s *AuthService) RequestConfirmationCode(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, trimEmail(email))
	if err != nil {
		return err
	}
	if user.Confirmed {
		return domain.ErrAlreadyConfirmed
	}

	token := s.newToken(user.ID, domain.TokenPurposeConfirmAccount)
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	s.send(ctx, "RequestConfirmationCode", s.notifier.SendConfirmation, user, token)
	return nil
}

// Login returns a session token. A pending account gets a fresh confirmation
// mail and ErrAccountNotConfirmed instead.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, trimEmail(email))
	if err != nil {
		return "", err
	}

	if !user.Confirmed {
		token := s.newToken(user.ID, domain.TokenPurposeConfirmAccount)
		if err := s.tokens.Create(ctx, token); err != nil {
			return "", err
		}
		s.send(ctx, "Login", s.notifier.SendConfirmation, user, token)
		return "", domain.ErrAccountNotConfirmed
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", domain.ErrIncorrectPassword
	}

	return s.sessions.Issue(user.ID)
}

// ForgotPassword mails a password reset token.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, trimEmail(email))
	if err != nil {
		return err
	}

	token := s.newToken(user.ID, domain.TokenPurposeResetPassword)
	if err := s.tokens.Create(ctx, token); err != nil {
		return err
	}

	s.send(ctx, "ForgotPassword", s.notifier.SendPasswordReset, user, token)
	return nil
}

// ValidateResetToken checks a reset token without consuming it.
func (s *AuthService) ValidateResetToken(ctx context.Context, value string) error {
	_, err := s.lookup(ctx, value, domain.TokenPurposeResetPassword)
	return err
}

// UpdatePasswordWithToken consumes a reset token and sets a new password.
func (s *AuthService) UpdatePasswordWithToken(ctx context.Context, value, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.redeem(ctx, value, domain.TokenPurposeResetPassword, func(repos *repository.Repositories, user *domain.User) error {
		user.PasswordHash = hash
		return repos.User.Update(ctx, user)
	})
	return err
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile changes name and email. An email owned by another account
// is rejected with ErrEmailInUse.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error) {
	email := trimEmail(input.Email)

	owner, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && owner.ID != userID:
		return nil, domain.ErrEmailInUse
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(input.Name)
	user.Email = email

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

// UpdateCurrentPassword replaces the password after checking the current one.
func (s *AuthService) UpdateCurrentPassword(ctx context.Context, userID uuid.UUID, current, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(current, user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// CheckPassword returns ErrIncorrectPassword unless password is the user's.
func (s *AuthService) CheckPassword(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.ErrIncorrectPassword
	}
	return nil
}

// PurgeExpiredTokens deletes every token past its lifetime.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	if s.tokenTTL <= 0 {
		return 0, nil
	}
	return s.tokens.DeleteExpired(ctx, s.now().Add(-s.tokenTTL))
}

func (s *AuthService) newToken(userID uuid.UUID, purpose domain.TokenPurpose) *domain.Token {
	return &domain.Token{
		ID:        uuid.New(),
		Value:     auth.NewOpaqueToken(),
		UserID:    userID,
		Purpose:   purpose,
		CreatedAt: s.now(),
	}
}

// lookup finds a live token. Unknown, used and expired tokens all yield
// domain.ErrTokenNotFound.
func (s *AuthService) lookup(ctx context.Context, value string, purpose domain.TokenPurpose) (*domain.Token, error) {
	if value == "" {
		return nil, domain.ErrTokenNotFound
	}
	token, err := s.tokens.GetByValue(ctx, value, purpose)
	if err != nil {
		return nil, err
	}
	if token.Expired(s.now(), s.tokenTTL) {
		if err := s.tokens.Delete(ctx, token.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("ERROR [service.AuthService.lookup] failed to delete expired token %s: %v", token.ID, err)
		}
		return nil, domain.ErrTokenNotFound
	}
	return token, nil
}

// redeem consumes a token and applies its effect to the owner in one
// transaction. Other tokens of the same owner and purpose are retired with it.
func (s *AuthService) redeem(
	ctx context.Context,
	value string,
	purpose domain.TokenPurpose,
	apply func(repos *repository.Repositories, user *domain.User) error,
) (*domain.User, error) {
	token, err := s.lookup(ctx, value, purpose)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.tx.WithinTx(ctx, func(repos *repository.Repositories) error {
		if err := repos.Token.Delete(ctx, token.ID); err != nil {
			return err
		}
		if err := repos.Token.DeleteByUserAndPurpose(ctx, token.UserID, purpose); err != nil {
			return err
		}

		u, err := repos.User.GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		if err := apply(repos, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) send(
	ctx context.Context,
	op string,
	deliver func(context.Context, notify.Message) error,
	user *domain.User,
	token *domain.Token,
) {
	msg := notify.Message{Email: user.Email, Name: user.Name, Token: token.Value}
	if err := deliver(ctx, msg); err != nil {
		log.Printf("ERROR [service.AuthService.%s] failed to notify %s: %v", op, user.Email, err)
	}
}

// trimEmail drops surrounding blanks. Case is kept: addresses are unique
// on their exact string.
func trimEmail(email string) string {
	return strings.TrimSpace(email)
}
