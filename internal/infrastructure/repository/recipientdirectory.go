package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/application/notification"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

// RecipientDirectory resolves mail recipients from the users table.
type RecipientDirectory struct {
	db *gorm.DB
}

func NewRecipientDirectory(db *gorm.DB) *RecipientDirectory {
	return &RecipientDirectory{db: db}
}

func (d *RecipientDirectory) Lookup(ctx context.Context, userID uint) (notification.Recipient, error) {
	var model models.UserModel

	if err := d.db.WithContext(ctx).Select("id", "email", "name").First(&model, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notification.Recipient{}, apperrors.NewNotFoundError("user not found", fmt.Sprint(userID))
		}
		return notification.Recipient{}, fmt.Errorf("failed to look up user %d: %w", userID, err)
	}

	return notification.Recipient{UserID: model.ID, Email: model.Email, Name: model.Name}, nil
}
