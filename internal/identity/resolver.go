package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Pratham722007/Hackout-25/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// Ref identifies a user by any of the identifiers that reach the platform
// boundary: the internal UUID, a Clerk user ID, or an email address.
type Ref struct {
	UserID      uuid.UUID
	ClerkUserID string
	Email       string
}

// Resolver maps external identities onto platform users. Clerk-synced users
// that have never hit the platform before are provisioned lazily.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve tries the ref's identifiers in order of specificity. A Clerk ID with
// no matching row creates a verified placeholder account when an email is also
// present; without one the lookup fails.
func (r *Resolver) Resolve(ref Ref) (*models.User, error) {
	if ref.UserID != uuid.Nil {
		var user models.User
		if err := r.db.First(&user, "id = ?", ref.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &user, nil
	}

	if ref.ClerkUserID != "" {
		var user models.User
		err := r.db.First(&user, "clerk_user_id = ?", ref.ClerkUserID).Error
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if ref.Email != "" {
			return r.provisionClerkUser(ref.ClerkUserID, ref.Email)
		}
		return nil, ErrUserNotFound
	}

	if ref.Email != "" {
		var user models.User
		if err := r.db.First(&user, "email = ?", ref.Email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &user, nil
	}

	return nil, ErrUserNotFound
}

// Upsert creates or updates a user from a Clerk sync event.
func (r *Resolver) Upsert(clerkUserID, email, username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("clerk_user_id = ? OR email = ?", clerkUserID, email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:           uuid.New(),
			Email:        email,
			Username:     username,
			ClerkUserID:  &clerkUserID,
			AuthProvider: "clerk",
			IsVerified:   true,
		}
		if user.Username == "" {
			user.Username = strings.Split(email, "@")[0]
		}
		if err := r.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create clerk user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"clerk_user_id": clerkUserID,
		"auth_provider": "clerk",
		"is_verified":   true,
	}
	if email != "" {
		updates["email"] = email
	}
	if username != "" {
		updates["username"] = username
	}
	if err := r.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update clerk user: %w", err)
	}
	return &user, nil
}

// Delete soft-deletes the user linked to a Clerk ID. Missing rows are fine.
func (r *Resolver) Delete(clerkUserID string) error {
	return r.db.Where("clerk_user_id = ?", clerkUserID).Delete(&models.User{}).Error
}

func (r *Resolver) provisionClerkUser(clerkUserID, email string) (*models.User, error) {
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     strings.Split(email, "@")[0],
		ClerkUserID:  &clerkUserID,
		AuthProvider: "clerk",
		IsVerified:   true,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to provision clerk user: %w", err)
	}
	return &user, nil
}
