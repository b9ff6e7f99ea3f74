// Package gateway calls a hosted text-completion service with an assembled
// prompt and a bounded output length. Every failure path is converted to a
// structured *Error; callers decide how to surface it and must not retry.
package gateway

import (
	"fmt"
	"time"
)

// SystemInstruction is the fixed system turn sent with every completion.
const SystemInstruction = "You are a helpful, concise personal AI coach."

// Temperature is the sampling temperature used for the coaching tone.
const Temperature = 0.6

// DefaultTimeout bounds a single completion call when the configuration
// does not supply one.
const DefaultTimeout = 15 * time.Second

// Kind classifies a gateway failure.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindTimeout      Kind = "timeout"
	KindTransport    Kind = "transport"
	KindMalformed    Kind = "malformed"
)

// Error is the structured failure value for a completion call.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
}

// Completer issues a single synchronous completion call. A nil error means
// the returned text is a successful result; the offline fallback is a
// successful result, not an error. Implementations make exactly one attempt
// per invocation.
type Completer interface {
	Complete(prompt string, maxOutputTokens int) (string, error)
}

// Provider names accepted by Config.Provider.
const (
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
	ProviderOffline     = "offline"
)

// Config selects and parameterizes a completion provider.
type Config struct {
	// Provider forces a backend. Empty means auto: the first provider with
	// a configured credential wins, otherwise offline.
	Provider string
	Timeout  time.Duration

	OpenAIAPIKey string
	OpenAIModel  string
	OpenAIURL    string

	HFAPIKey string
	HFModel  string
	HFURL    string

	GeminiAPIKey string
	GeminiModel  string
}

// New builds the configured Completer. With no credential configured it
// returns the offline completer, which performs no network calls.
func New(cfg Config) (Completer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.OpenAIAPIKey != "":
			provider = ProviderOpenAI
		case cfg.HFAPIKey != "":
			provider = ProviderHuggingFace
		case cfg.GeminiAPIKey != "":
			provider = ProviderGemini
		default:
			provider = ProviderOffline
		}
	}

	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return Offline{}, nil
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.OpenAIModel, cfg.Timeout), nil
	case ProviderHuggingFace:
		if cfg.HFAPIKey == "" {
			return Offline{}, nil
		}
		return NewHuggingFaceClient(cfg.HFAPIKey, cfg.HFURL, cfg.HFModel, cfg.Timeout), nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return Offline{}, nil
		}
		return NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Timeout)
	case ProviderOffline:
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}
