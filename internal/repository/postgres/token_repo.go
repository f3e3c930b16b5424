package postgres

import (
	"context"
	"time"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *tokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	return translate(r.db.WithContext(ctx).Create(token).Error, domain.ErrTokenNotFound)
}

func (r *tokenRepository) GetByValue(ctx context.Context, value string, purpose domain.TokenPurpose) (*domain.Token, error) {
	var token domain.Token
	err := r.db.WithContext(ctx).
		Where("value = ? AND purpose = ?", value, purpose).
		First(&token).Error
	if err != nil {
		return nil, translate(err, domain.ErrTokenNotFound)
	}
	return &token, nil
}

// Delete removes the token. Of two concurrent deletes of the same token only
// one succeeds; the other gets domain.ErrTokenNotFound.
func (r *tokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Token{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *tokenRepository) DeleteByUserAndPurpose(ctx context.Context, userID uuid.UUID, purpose domain.TokenPurpose) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Delete(&domain.Token{}).Error
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&domain.Token{})
	return result.RowsAffected, result.Error
}
