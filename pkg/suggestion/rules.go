package suggestion

import "strings"

const (
	// RecentWindow is how many of the latest entries drive suggestions.
	RecentWindow = 10
	// MinSuggestions is the fill target.
	MinSuggestions = 5
	// MaxSuggestions caps the list.
	MaxSuggestions = 8

	ToolMerchantByCanvas       = "getMerchantByCanvas"
	ToolSearchCallsAndMessages = "searchCallsAndMessages"
)

var baseSuggestions = []string{
	"Show me today's calls",
	"Find conversations about pricing",
	"What is the overall customer sentiment?",
	"Show me recent messages",
	"Which merchants had the most interactions?",
}

var (
	merchantFollowUps = []string{
		"Show merchant interaction timeline",
		"Compare merchant sentiment over time",
		"List recent calls with this merchant",
	}
	callFollowUps = []string{
		"Summarize today's calls",
		"Find calls with negative sentiment",
		"Show call duration statistics",
	}
	sentimentFollowUps = []string{
		"Show sentiment trends this week",
		"Find the most negative conversations",
		"Compare sentiment across merchants",
	}
	canvasFollowUps = []string{
		"Show all contacts for this merchant",
		"Look up another merchant in Canvas",
	}
	semanticSearchFollowUps = []string{
		"Search for similar conversations",
		"Find messages mentioning refunds",
	}
)

// BaseSuggestions returns the canned list shown with no history.
func BaseSuggestions() []string {
	return append([]string(nil), baseSuggestions...)
}

type rule struct {
	applies func(recent []HistoryEntry) bool
	adds    []string
}

var followUpRules = []rule{
	{applies: anyQueryMentions("merchant"), adds: merchantFollowUps},
	{applies: anyQueryMentions("call"), adds: callFollowUps},
	{applies: anyQueryMentions("sentiment"), adds: sentimentFollowUps},
	{applies: anyToolUsed(ToolMerchantByCanvas), adds: canvasFollowUps},
	{applies: anyToolUsed(ToolSearchCallsAndMessages), adds: semanticSearchFollowUps},
}

func anyQueryMentions(word string) func([]HistoryEntry) bool {
	return func(recent []HistoryEntry) bool {
		for _, e := range recent {
			if strings.Contains(strings.ToLower(e.Query), word) {
				return true
			}
		}
		return false
	}
}

func anyToolUsed(tool string) func([]HistoryEntry) bool {
	return func(recent []HistoryEntry) bool {
		for _, e := range recent {
			for _, t := range e.ToolsUsed {
				if t == tool {
					return true
				}
			}
		}
		return false
	}
}

// variants rewrites the latest query into nearby questions. Matching ignores
// case; the rest of the query keeps the user's casing.
func variants(query string) []string {
	q := strings.TrimSpace(query)
	var out []string
	if i := indexFold(q, "today"); i >= 0 {
		out = append(out,
			replaceAt(q, i, len("today"), "this week"),
			replaceAt(q, i, len("today"), "this month"),
		)
	}
	if i := indexFold(q, "show me"); i >= 0 {
		out = append(out,
			replaceAt(q, i, len("show me"), "analyze"),
			replaceAt(q, i, len("show me"), "compare"),
		)
	}
	return out
}

// indexFold is strings.Index for an ASCII needle, ignoring case.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

// replaceAt swaps s[i:i+n] for repl, capitalising repl when the replaced text
// was capitalised ("Show me", not "SHOW ME").
func replaceAt(s string, i, n int, repl string) string {
	if isUpper(s[i]) && !isUpper(s[i+1]) {
		repl = strings.ToUpper(repl[:1]) + repl[1:]
	}
	return s[:i] + repl + s[i+n:]
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// ComputeSuggestions derives the suggestion list from history. It only looks
// at the last RecentWindow entries and never mutates its input. A nil
// selector fills with FirstAvailable.
func ComputeSuggestions(history []HistoryEntry, sel Selector) []string {
	if len(history) == 0 {
		return BaseSuggestions()
	}
	if sel == nil {
		sel = FirstAvailable{}
	}

	recent := history
	if len(recent) > RecentWindow {
		recent = recent[len(recent)-RecentWindow:]
	}

	out := make([]string, 0, MaxSuggestions)
	seen := make(map[string]bool)
	add := func(items ...string) {
		for _, s := range items {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}

	for _, r := range followUpRules {
		if r.applies(recent) {
			add(r.adds...)
		}
	}
	add(variants(recent[len(recent)-1].Query)...)

	for len(out) < MinSuggestions {
		pool := make([]string, 0, len(baseSuggestions))
		for _, s := range baseSuggestions {
			if !seen[s] {
				pool = append(pool, s)
			}
		}
		pick, ok := sel.Pick(pool)
		if !ok || seen[pick] {
			break
		}
		add(pick)
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
