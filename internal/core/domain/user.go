package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a GitHub-authenticated account. Users are created on first OAuth
// sign-in and keyed by their GitHub id.
type User struct {
	ID          uuid.UUID
	GithubID    int64
	Login       string
	Name        string
	Email       string
	AvatarURL   string
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
