package gateway

// FallbackResponse is the fixed plan text returned when no credential is
// configured. The "[Demo mode]" prefix makes it distinguishable from a real
// completion.
const FallbackResponse = "[Demo mode] AI not configured. Here's a suggested daily plan:\n\n" +
	"- Morning: 30-min focused learning on topic.\n" +
	"- Afternoon: Apply learning with a small task.\n" +
	"- Evening: Revise & reflect."

// Offline is the degraded-mode completer. It returns FallbackResponse
// immediately and never touches the network.
type Offline struct{}

func (Offline) Complete(prompt string, maxOutputTokens int) (string, error) {
	return FallbackResponse, nil
}
