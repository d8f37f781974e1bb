package domain

import (
	"github.com/google/wire"

	"waves-server/internal/domain/ask"
	"waves-server/internal/domain/search"
	"waves-server/internal/domain/user"
)

// DomainProvider provides all domain services
var DomainProvider = wire.NewSet(
	search.NewSearchService,
	user.NewService,
	ask.NewService,
	wire.Bind(new(ask.Searcher), new(*search.SearchService)),
)
