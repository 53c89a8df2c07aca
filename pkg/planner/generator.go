package planner

import "strings"

// Step ids, in the order they appear in a plan.
const (
	StepAnalyze   = "analyze"
	StepVectorize = "vectorize"
	StepD1Query   = "d1_query"
	StepCanvas    = "canvas"
	StepTimeline  = "timeline"
	StepStats     = "stats"
	StepAggregate = "aggregate"
)

var (
	searchKeywords    = []string{"search", "find", "look for", "about"}
	callKeywords      = []string{"call", "conversation", "phone"}
	messageKeywords   = []string{"message", "sms", "text"}
	sentimentKeywords = []string{"sentiment", "feeling", "mood", "positive", "negative"}
	merchantKeywords  = []string{"merchant", "canvas", "contact"}
	timelineKeywords  = []string{"timeline", "history", "interactions"}
	statsKeywords     = []string{"stats", "statistics", "analytics", "dashboard"}
)

// stepRule decides whether a step belongs in the plan for a lower-cased query.
type stepRule struct {
	id          string
	description string
	applies     func(q string) bool
}

func always(string) bool { return true }

func containsAny(keywords ...[]string) func(q string) bool {
	return func(q string) bool {
		for _, group := range keywords {
			for _, kw := range group {
				if strings.Contains(q, kw) {
					return true
				}
			}
		}
		return false
	}
}

// Order here is the order of steps in every plan.
var stepRules = []stepRule{
	{StepAnalyze, "Analyzing your question", always},
	{StepVectorize, "Searching the semantic index", containsAny(searchKeywords)},
	{StepD1Query, "Querying calls and messages", containsAny(callKeywords, messageKeywords, sentimentKeywords)},
	{StepCanvas, "Looking up merchant details", containsAny(merchantKeywords)},
	{StepTimeline, "Building the interaction timeline", containsAny(timelineKeywords)},
	{StepStats, "Computing statistics", containsAny(statsKeywords)},
	{StepAggregate, "Preparing the answer", always},
}

// GeneratePlanSteps classifies query with plain substring checks and returns the
// steps that apply, all pending. The result always starts with analyze and ends
// with aggregate.
func GeneratePlanSteps(query string) []QueryStep {
	q := strings.ToLower(query)

	steps := make([]QueryStep, 0, len(stepRules))
	for _, rule := range stepRules {
		if !rule.applies(q) {
			continue
		}
		steps = append(steps, QueryStep{
			ID:          rule.id,
			Description: rule.description,
			Status:      StatusPending,
		})
	}
	return steps
}
