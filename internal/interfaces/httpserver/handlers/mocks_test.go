package handlers_test

import (
	"context"

	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/search"
	"waves-server/internal/domain/user"
)

type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string, limit int) (*search.Envelope, error)
}

func (m *MockSearchService) Search(ctx context.Context, query string, limit int) (*search.Envelope, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, limit)
	}
	return search.NewEnvelope(query, nil, nil), nil
}

type MockUserService struct {
	RegisterFunc       func(ctx context.Context, params user.RegisterParams) (*user.Session, error)
	LoginFunc          func(ctx context.Context, username, password string) (*user.Session, error)
	LogoutFunc         func(ctx context.Context, u *user.User, token string) error
	UpdateSettingsFunc func(ctx context.Context, u *user.User, update user.SettingsUpdate) (*user.Settings, error)
	AuthenticateFunc   func(ctx context.Context, token string) (*user.User, error)
}

func (m *MockUserService) Register(ctx context.Context, params user.RegisterParams) (*user.Session, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (*user.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return nil, nil
}

func (m *MockUserService) Logout(ctx context.Context, u *user.User, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, u, token)
	}
	return nil
}

func (m *MockUserService) UpdateSettings(ctx context.Context, u *user.User, update user.SettingsUpdate) (*user.Settings, error) {
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(ctx, u, update)
	}
	settings := user.SettingsOf(u)
	return &settings, nil
}

func (m *MockUserService) Authenticate(ctx context.Context, token string) (*user.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, token)
	}
	return nil, nil
}

type MockAskService struct {
	AskFunc func(ctx context.Context, question string) (*ask.Answer, error)
}

func (m *MockAskService) Ask(ctx context.Context, question string) (*ask.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &ask.Answer{Question: question, Answer: ask.NoAnswer}, nil
}

type MockStoreProbe struct {
	PingFunc       func(ctx context.Context) error
	NamespacesFunc func(ctx context.Context, limit int) ([]string, error)
}

func (m *MockStoreProbe) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockStoreProbe) Namespaces(ctx context.Context, limit int) ([]string, error) {
	if m.NamespacesFunc != nil {
		return m.NamespacesFunc(ctx, limit)
	}
	return []string{}, nil
}
