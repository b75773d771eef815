package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blaisecz/health-insights/internal/domain"
)

const systemPrompt = `You are a non-medical health tracking assistant.

You receive aggregated health metrics for a single user. You must base your conclusions only on the provided data.

Rules:
- Do NOT provide medical advice or diagnoses.
- Do NOT mention diseases, disorders, doctors, or treatment.
- Focus only on behavior and routines (activity, sleep timing, recovery).
- If data is limited or mixed, say that explicitly.
- Answer in 2 to 4 short sentences of plain text. No lists, no markdown.`

var topicInstructions = map[domain.InsightTopic]string{
	domain.TopicDailyOverview: "Summarize today's activity, last night's sleep and heart metrics, and suggest one thing to focus on for the rest of the day.",
	domain.TopicMetric:        "Explain how today's value compares to yesterday, the weekly average and the goal, and suggest one concrete step.",
	domain.TopicWeeklySummary: "Summarize the past week, call out the clearest trend and one area to improve next week.",
	domain.TopicTrend:         "Describe the direction of this trend and what habit most likely drives it.",
	domain.TopicLab:           "Put these measurements in plain language and point out which one changed the most.",
}

// BuildPrompt renders the user prompt for an insight request. Inputs are listed
// in the given order; values keep two decimals.
func BuildPrompt(req domain.InsightRequest) string {
	var b strings.Builder

	instruction, ok := topicInstructions[req.Topic]
	if !ok {
		instruction = "Summarize these metrics."
	}
	fmt.Fprintf(&b, "Topic: %s (%s)\n", req.Topic, req.Scope)
	b.WriteString(instruction)
	b.WriteString("\n\nMetrics:\n")
	if len(req.Inputs) == 0 {
		b.WriteString("- no data recorded\n")
	}
	for _, in := range req.Inputs {
		fmt.Fprintf(&b, "- %s: %s\n", in.Name, strconv.FormatFloat(in.Value, 'f', 2, 64))
	}
	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		b.WriteString("\nAdditional context:\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	return b.String()
}
