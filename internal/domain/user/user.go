package user

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// User is the stored user document.
type User struct {
	Username     string             `json:"username"`
	PasswordHash string             `json:"password_hash"`
	DisplayName  *string            `json:"display_name"`
	Wallpaper    *string            `json:"wallpaper"`
	Settings     map[string]*string `json:"settings"`
	Tokens       []string           `json:"tokens"`
	IsActive     bool               `json:"is_active"`
}

// Key is the normalised username used for lookups and uniqueness.
func Key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// HasToken reports whether token is one of the user's active sessions.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// AddToken appends a session token.
func (u *User) AddToken(token string) {
	if !u.HasToken(token) {
		u.Tokens = append(u.Tokens, token)
	}
}

// RemoveToken drops a session token and reports whether it was present.
func (u *User) RemoveToken(token string) bool {
	for i, t := range u.Tokens {
		if t == token {
			u.Tokens = append(u.Tokens[:i], u.Tokens[i+1:]...)
			return true
		}
	}
	return false
}

// Profile is the public view of a user: no hash, no tokens.
type Profile struct {
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	Wallpaper   *string `json:"wallpaper"`
	IsActive    bool    `json:"is_active"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Wallpaper:   u.Wallpaper,
		IsActive:    u.IsActive,
	}
}

// Settings is the desktop personalisation of a user.
type Settings struct {
	DisplayName *string            `json:"display_name"`
	Wallpaper   *string            `json:"wallpaper"`
	Settings    map[string]*string `json:"settings"`
}

// SettingsOf extracts the settings view of u.
func SettingsOf(u *User) Settings {
	values := u.Settings
	if values == nil {
		values = map[string]*string{}
	}
	return Settings{
		DisplayName: u.DisplayName,
		Wallpaper:   u.Wallpaper,
		Settings:    values,
	}
}

// Repository is the document store for users. Lookups by username use Key.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByToken(ctx context.Context, token string) (*User, error)
	// Insert fails with ErrUsernameTaken when the username exists.
	Insert(ctx context.Context, u *User) error
	// Update applies mutate to the stored document atomically and returns
	// the stored result. mutate may run more than once under contention.
	Update(ctx context.Context, username string, mutate func(*User) error) (*User, error)
	Ping(ctx context.Context) error
}

// PasswordHasher hashes and verifies credentials.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// TokenGenerator issues session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}
