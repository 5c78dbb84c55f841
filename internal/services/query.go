package services

import (
	"context"
	"strings"

	"github.com/streed/exo/internal/logger"
)

// Querier sends free text to a language model.
type Querier interface {
	Query(ctx context.Context, text string) (string, error)
}

// QueryService backs the query, gen, riff and analyze commands.
type QueryService struct {
	querier Querier
}

func NewQueryService(querier Querier) *QueryService {
	return &QueryService{querier: querier}
}

func (s *QueryService) Query(ctx context.Context, text string) Result {
	const title = "Exo Query Error"
	if strings.TrimSpace(text) == "" {
		return failure(title, KindValidation, "Please provide a query. Usage: query <query_string>")
	}

	out, err := s.querier.Query(ctx, text)
	if err != nil {
		logger.Error("Error querying language model: %v", err)
		return failure(title, Classify(err),
			"An error occurred while processing your query. Please try again later.")
	}
	return ok("RESULTS FROM EXO.\n", out)
}
