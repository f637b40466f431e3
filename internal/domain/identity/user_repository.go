package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// UserRepository defines the persistence interface for users
type UserRepository interface {
	shared.Repository[User]

	// FindByEmail finds a user by email (case-insensitive)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByIDs finds users by a set of IDs, used for profile enrichment
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)

	// ExistsByEmail checks whether a user with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
