package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/relocation-matcher/internal/types"
)

// User is an account row, including the password hash.
type User struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the account without credentials. Admin status is decided
// by the caller's policy, not stored.
func (u *User) Public(isAdmin bool) *types.User {
	return &types.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		IsAdmin:     isAdmin,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// StoredAnswers is one saved diagnosis.
type StoredAnswers struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Answers   types.AnswerSet `json:"answers"`
	CreatedAt time.Time       `json:"created_at"`
}
