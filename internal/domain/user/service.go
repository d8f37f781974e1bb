package user

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog/log"

	"waves-server/internal/utils/platformerrors"
)

const (
	MinPasswordLength = 6
	invalidLoginMsg   = "invalid username or password"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// ValidUsername reports whether username is 3-32 characters of [a-zA-Z0-9_.-].
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// RegisterParams holds the input of Register.
type RegisterParams struct {
	Username    string
	Password    string
	DisplayName *string
}

// SettingsUpdate holds the fields of a settings merge. Nil fields are left
// untouched; entries of Settings overwrite the stored keys one by one.
type SettingsUpdate struct {
	DisplayName *string
	Wallpaper   *string
	Settings    map[string]*string
}

// Session is an issued token together with its owner.
type Session struct {
	Token string
	User  *User
}

// Service implements registration, login and per-user settings.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenGenerator
}

// NewService creates a new user service.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenGenerator) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates an active user and opens its first session.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	if !ValidUsername(params.Username) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"username must be 3-32 characters of letters, digits, '_', '.' or '-'", nil, "")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"password must be at least 6 characters", nil, "")
	}

	digest, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to hash password", err, "")
	}
	token, err := s.newToken(ctx)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     params.Username,
		PasswordHash: digest,
		DisplayName:  params.DisplayName,
		Settings:     map[string]*string{},
		Tokens:       []string{token},
		IsActive:     true,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
				"username already exists", err, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create user")
	}

	log.Info().Str("username", u.Username).Msg("user registered")
	return &Session{Token: token, User: u}, nil
}

// Login verifies the credentials and appends a new session token.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
				invalidLoginMsg, nil, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load user")
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			invalidLoginMsg, nil, "")
	}
	if !u.IsActive {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"user is inactive", nil, "")
	}

	token, err := s.newToken(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, u.Username, func(stored *User) error {
		stored.AddToken(token)
		return nil
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store session")
	}
	return &Session{Token: token, User: updated}, nil
}

// Authenticate returns the active owner of token.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
			"missing bearer token", nil, "")
	}
	u, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized,
				"invalid or expired token", nil, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to resolve token")
	}
	if !u.IsActive {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"user is inactive", nil, "")
	}
	return u, nil
}

// Logout removes token from its owner. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, u *User, token string) error {
	_, err := s.repo.Update(ctx, u.Username, func(stored *User) error {
		stored.RemoveToken(token)
		return nil
	})
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to end session")
	}
	return nil
}

// UpdateSettings merges update into the stored settings of u.
func (s *Service) UpdateSettings(ctx context.Context, u *User, update SettingsUpdate) (*Settings, error) {
	updated, err := s.repo.Update(ctx, u.Username, func(stored *User) error {
		if update.DisplayName != nil {
			stored.DisplayName = update.DisplayName
		}
		if update.Wallpaper != nil {
			stored.Wallpaper = update.Wallpaper
		}
		if len(update.Settings) > 0 && stored.Settings == nil {
			stored.Settings = make(map[string]*string, len(update.Settings))
		}
		for key, value := range update.Settings {
			stored.Settings[key] = value
		}
		return nil
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update settings")
	}
	settings := SettingsOf(updated)
	return &settings, nil
}

// Ping checks the user store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *Service) newToken(ctx context.Context) (string, error) {
	token, err := s.tokens.NewToken()
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal,
			"failed to issue token", err, "")
	}
	return token, nil
}
