package services

import (
	"github.com/streed/exo/internal/config"
	"github.com/streed/exo/internal/search"
	"github.com/streed/exo/internal/store"
)

// Services contains all the service dependencies
type Services struct {
	Config *config.Config
	Notes  *NotesService
	Query  *QueryService
}

// NewServices creates a new services container
func NewServices(
	cfg *config.Config,
	noteStore *store.NoteStore,
	searchProvider search.SearchProvider,
	querier Querier,
) *Services {
	return &Services{
		Config: cfg,
		Notes:  NewNotesService(noteStore, searchProvider, cfg.SearchLimit),
		Query:  NewQueryService(querier),
	}
}

