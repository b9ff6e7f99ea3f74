// Package prompt renders stored user data into the natural-language
// instruction strings sent to the completion gateway. All functions are
// pure: identical inputs produce byte-identical output.
package prompt

import (
	"fmt"
	"strings"
)

// MemoryLine formats one prior goal as a memory-summary bullet body.
func MemoryLine(title, details string) string {
	return fmt.Sprintf("Goal: %s - %s", title, details)
}

// BuildDailyPlanPrompt asks for a time-blocked daily plan for a single goal.
// Name, language, title and details are embedded verbatim so the model can
// personalize.
func BuildDailyPlanPrompt(name, language, goalTitle, goalDetails string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a concise personal coach. User name: %s. Language preference: %s.\n", name, language)
	fmt.Fprintf(&b, "User goal: %q.\n", goalTitle)
	fmt.Fprintf(&b, "Details: %s\n\n", goalDetails)
	b.WriteString("Create a practical, prioritized DAILY plan for today (morning/afternoon/evening), with:\n")
	b.WriteString("- concrete 3-5 tasks\n")
	b.WriteString("- approximate time for each task\n")
	b.WriteString("- one quick habit to build (2-5 minutes)\n")
	b.WriteString("- one suggested resource (free) or action\n")
	b.WriteString("Keep it short and actionable, bullet points. End with a one-line motivational note.")
	return b.String()
}

// BuildChatPrompt asks for concrete, actionable advice in response to a free
// text question. The memory section enumerates prior goals as bullet lines
// and is omitted entirely when memory is empty.
func BuildChatPrompt(name, language string, memory []string, userMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a concise personal AI coach for %s. Language: %s.\n", name, language)
	if len(memory) > 0 {
		b.WriteString("User memory summary:\n")
		for _, m := range memory {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	fmt.Fprintf(&b, "\nUser asks: %s\n\n", userMessage)
	b.WriteString("Respond helpfully and give concrete steps, resources, and one short checklist if applicable.")
	return b.String()
}
