package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultHFURL = "https://api-inference.huggingface.co/models"
const defaultHFModel = "mistralai/Mistral-7B-Instruct-v0.3"

// HuggingFaceClient calls a Hugging Face inference endpoint.
type HuggingFaceClient struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

func NewHuggingFaceClient(apiKey, baseURL, model string, timeout time.Duration) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = defaultHFURL
	}
	if model == "" {
		model = defaultHFModel
	}
	return &HuggingFaceClient{
		apiKey: apiKey,
		url:    strings.TrimSuffix(baseURL, "/") + "/" + model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (c *HuggingFaceClient) Complete(prompt string, maxOutputTokens int) (string, error) {
	// HF text-generation models take a single input string, so the system
	// instruction is prepended to the prompt.
	reqBody := hfRequest{
		Inputs: SystemInstruction + "\n\n" + prompt,
		Parameters: hfParameters{
			MaxNewTokens:   maxOutputTokens,
			Temperature:    Temperature,
			ReturnFullText: false,
		},
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

	var generations []hfGeneration
	if err := json.Unmarshal(body, &generations); err != nil {
		return "", &Error{Kind: KindMalformed, Message: fmt.Sprintf("failed to parse response: %s", truncate(string(body), 400))}
	}
	if len(generations) == 0 {
		return "", &Error{Kind: KindMalformed, Message: "response contained no generations"}
	}
	content := strings.TrimSpace(generations[0].GeneratedText)
	if content == "" {
		return "", &Error{Kind: KindMalformed, Message: "response contained empty generated_text"}
	}
	return content, nil
}
