package intent

import "strings"

// complexityKeywords is the fixed signal-word set for model selection.
// Matching is case-insensitive substring. This heuristic is externally
// observable behavior (it decides which backend model handles a request),
// so it must not be "improved" casually.
var complexityKeywords = []string{
	"analyze",
	"analysis",
	"correlation",
	"predict",
	"forecast",
	"trend",
	"compare",
	"insight",
	"statistical",
	"regression",
}

// complexityLengthThreshold routes long utterances to the capable model.
const complexityLengthThreshold = 200

// IsComplexQuery reports whether an utterance should go to the
// higher-capability backend model.
func IsComplexQuery(utterance string) bool {
	if len(utterance) > complexityLengthThreshold {
		return true
	}
	lower := strings.ToLower(utterance)
	for _, kw := range complexityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// SelectModel picks the backend model name for an utterance.
func SelectModel(utterance, fastModel, capableModel string) string {
	if IsComplexQuery(utterance) {
		return capableModel
	}
	return fastModel
}

// chartKinds are the chart types the engine can produce.
var chartKinds = []string{"bar", "line", "pie"}

// NeedsChartClarification reports whether the utterance asks for a chart
// without naming a supported kind. In that case the gateway short-circuits
// with a clarifying question instead of calling the LLM.
func NeedsChartClarification(utterance string) bool {
	lower := strings.ToLower(utterance)
	if !strings.Contains(lower, "chart") {
		return false
	}
	for _, kind := range chartKinds {
		if strings.Contains(lower, kind) {
			return false
		}
	}
	return true
}
