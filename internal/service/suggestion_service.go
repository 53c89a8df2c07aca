package service

import (
	"context"

	"chatpulse/internal/dto"
	"chatpulse/internal/pkg/logger"
	"chatpulse/pkg/events"
	"chatpulse/pkg/suggestion"
)

type ISuggestionService interface {
	Suggestions(ctx context.Context) *dto.SuggestionsResponse
	Record(ctx context.Context, identifier string, req *dto.RecordQueryRequest) *dto.SuggestionsResponse
	Recent(ctx context.Context, limit int) *dto.RecentQueriesResponse
	Popular(ctx context.Context) *dto.PopularQueriesResponse
	Clear(ctx context.Context) *dto.SuggestionsResponse
}

type suggestionService struct {
	engine    *suggestion.Engine
	publisher IPublisherService
	logger    logger.ILogger
}

func NewSuggestionService(engine *suggestion.Engine, publisher IPublisherService, log logger.ILogger) ISuggestionService {
	return &suggestionService{
		engine:    engine,
		publisher: publisher,
		logger:    log,
	}
}

func (s *suggestionService) Suggestions(ctx context.Context) *dto.SuggestionsResponse {
	return &dto.SuggestionsResponse{Suggestions: s.engine.Suggestions()}
}

// Record never fails the request: a store outage only costs durability.
func (s *suggestionService) Record(ctx context.Context, identifier string, req *dto.RecordQueryRequest) *dto.SuggestionsResponse {
	if err := s.engine.RecordQuery(req.Query, req.ToolsUsed, req.HasResults); err != nil {
		s.logger.Warn("SuggestionService", "History kept in memory only", map[string]interface{}{"error": err.Error()})
	}

	res := &dto.SuggestionsResponse{Suggestions: s.engine.Suggestions()}
	s.publish(ctx, identifier, res.Suggestions)
	return res
}

func (s *suggestionService) Recent(ctx context.Context, limit int) *dto.RecentQueriesResponse {
	return &dto.RecentQueriesResponse{Queries: s.engine.RecentQueries(limit)}
}

func (s *suggestionService) Popular(ctx context.Context) *dto.PopularQueriesResponse {
	return &dto.PopularQueriesResponse{Queries: s.engine.PopularQueries()}
}

func (s *suggestionService) Clear(ctx context.Context) *dto.SuggestionsResponse {
	if err := s.engine.ClearHistory(); err != nil {
		s.logger.Warn("SuggestionService", "Stored history could not be removed", map[string]interface{}{"error": err.Error()})
	}
	return &dto.SuggestionsResponse{Suggestions: s.engine.Suggestions()}
}

func (s *suggestionService) publish(ctx context.Context, identifier string, suggestions []string) {
	if s.publisher == nil || identifier == "" {
		return
	}
	event := events.NewLiveEvent(events.TypeSuggestions, identifier, map[string]interface{}{"suggestions": suggestions})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("SuggestionService", "Failed to publish suggestions", map[string]interface{}{"error": err.Error()})
	}
}
