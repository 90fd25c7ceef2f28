package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"scorevo/internal/models"
)

// UserService maintains the user directory. Credentials live in the
// external auth service; registration here records identity and reconciles
// any invitations that were waiting for the address.
type UserService struct {
	db          *gorm.DB
	invitations *InvitationService
	log         zerolog.Logger
}

// NewUserService wires a UserService.
func NewUserService(database *gorm.DB, invitations *InvitationService, log zerolog.Logger) *UserService {
	return &UserService{db: database, invitations: invitations, log: log}
}

// Register creates a directory entry and auto-accepts pending invitations
// addressed to its email. Invitation processing is best effort; a failure
// there does not undo the registration.
func (s *UserService) Register(ctx context.Context, email, displayName string) (models.User, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" {
		return models.User{}, invalid("email is required")
	}
	if displayName == "" {
		return models.User{}, invalid("display name is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ? OR display_name = ?", email, displayName).First(&existing).Error
		switch {
		case err == nil:
			return conflict("email or display name already in use")
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		user = models.User{
			ID:          uuid.New(),
			Email:       email,
			DisplayName: displayName,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return models.User{}, err
	}

	if err := s.invitations.ProcessPendingForNewRegistration(ctx, user.ID, email); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("process pending invitations for new user")
	}
	return user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	return fetchUser(s.db.WithContext(ctx), id)
}

// GetByEmail loads a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, notFound("user %s", email)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
