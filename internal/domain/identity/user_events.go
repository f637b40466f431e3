package identity

import (
	"github.com/google/uuid"
	"github.com/worktally/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered     = "UserRegistered"
	EventTypeUserProfileUpdated = "UserProfileUpdated"
)

// UserRegisteredEvent is published when a user account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID, uuid.Nil),
		Email:           user.Email,
	}
}

// UserProfileUpdatedEvent is published when display name or avatar change
type UserProfileUpdatedEvent struct {
	shared.BaseDomainEvent
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// NewUserProfileUpdatedEvent creates a new UserProfileUpdatedEvent
func NewUserProfileUpdatedEvent(user *User) *UserProfileUpdatedEvent {
	return &UserProfileUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserProfileUpdated, AggregateTypeUser, user.ID, uuid.Nil),
		DisplayName:     user.DisplayName,
		AvatarURL:       user.AvatarURL,
	}
}
