package dto

import "chatpulse/pkg/suggestion"

type RecordQueryRequest struct {
	Query      string   `json:"query" validate:"required,max=2000"`
	ToolsUsed  []string `json:"tools_used" validate:"omitempty,dive,required,max=100"`
	HasResults bool     `json:"has_results"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

type RecentQueriesResponse struct {
	Queries []suggestion.HistoryEntry `json:"queries"`
}

type PopularQueriesResponse struct {
	Queries []suggestion.PopularQuery `json:"queries"`
}
