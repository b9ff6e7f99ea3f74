package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
const defaultOpenAIModel = "gpt-4o"

// OpenAIClient calls the OpenAI chat completions endpoint.
type OpenAIClient struct {
	apiKey     string
	url        string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey, endpoint, model string, timeout time.Duration) *OpenAIClient {
	if endpoint == "" {
		endpoint = defaultOpenAIURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		apiKey: apiKey,
		url:    endpoint,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Complete(prompt string, maxOutputTokens int) (string, error) {
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: Temperature,
		MaxTokens:   maxOutputTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: fmt.Sprintf("failed to marshal request: %v", err)}
	}

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: KindTransport, Message: fmt.Sprintf("failed reading response: %v", err)}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &Error{Kind: KindUnauthorized, Message: fmt.Sprintf("status=%d body=%s", resp.StatusCode, truncate(string(body), 400))}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &Error{Kind: KindTransport, Message: fmt.Sprintf("non-success status=%d body=%s", resp.StatusCode, truncate(string(body), 400))}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Error{Kind: KindMalformed, Message: fmt.Sprintf("failed to parse response: %s", truncate(string(body), 400))}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Message: "response contained no choices"}
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", &Error{Kind: KindMalformed, Message: "response contained empty content"}
	}
	return content, nil
}

// classifyTransportErr maps an http.Client error to a timeout or transport
// gateway error.
func classifyTransportErr(err error) *Error {
	if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: urlErr.Error()}
	}
	return &Error{Kind: KindTransport, Message: err.Error()}
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
