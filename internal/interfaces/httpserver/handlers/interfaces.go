package handlers

import (
	"context"

	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/search"
	"waves-server/internal/domain/user"
)

// SearchService runs proxied web searches.
type SearchService interface {
	Search(ctx context.Context, query string, limit int) (*search.Envelope, error)
}

// UserService manages accounts, sessions and settings.
type UserService interface {
	Register(ctx context.Context, params user.RegisterParams) (*user.Session, error)
	Login(ctx context.Context, username, password string) (*user.Session, error)
	Logout(ctx context.Context, u *user.User, token string) error
	UpdateSettings(ctx context.Context, u *user.User, update user.SettingsUpdate) (*user.Settings, error)
}

// AskService answers questions from search results.
type AskService interface {
	Ask(ctx context.Context, question string) (*ask.Answer, error)
}

// StoreProbe inspects the document store.
type StoreProbe interface {
	Ping(ctx context.Context) error
	Namespaces(ctx context.Context, limit int) ([]string, error)
}
