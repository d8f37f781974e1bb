package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"waves-server/internal/config"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	System   *SystemHandler
	Search   *SearchHandler
	Auth     *AuthHandler
	Settings *SettingsHandler
	Ask      *AskHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	cfg *config.Config,
	searchService SearchService,
	userService UserService,
	askService AskService,
	store StoreProbe,
	validate *validator.Validate,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		System:   NewSystemHandler(cfg, store, log),
		Search:   NewSearchHandler(searchService, validate, log),
		Auth:     NewAuthHandler(userService, validate, log),
		Settings: NewSettingsHandler(userService, validate, log),
		Ask:      NewAskHandler(askService, validate, log),
	}
}
