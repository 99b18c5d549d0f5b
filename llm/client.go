package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client drives an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger
}

// NewClient constructs a Client against baseURL, authenticating with
// apiKey as a bearer token.
func NewClient(baseURL, apiKey string, log *zap.SugaredLogger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 120 * time.Second},
		log:     log,
	}
}

// wireMessage is one entry of the chat completions "messages" array.
type wireMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type wireContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice  `json:"choices"`
	Error   *wireAPIError `json:"error"`
}

type wireAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// renderItem converts a PromptItem into the wire message shape appropriate
// for model. Reasoning-class models reject the "system" role, so System
// items are rendered as "user" for them instead.
func renderItem(item PromptItem, model string) wireMessage {
	switch item.Kind {
	case PromptItemUser:
		return wireMessage{Role: "user", Content: renderContent(item.Content)}
	case PromptItemAssistant:
		return wireMessage{Role: "assistant", Content: item.Text}
	case PromptItemSystem:
		if isReasoningModel(model) {
			return wireMessage{Role: "user", Content: item.Text}
		}
		return wireMessage{Role: "system", Content: item.Text}
	default:
		return wireMessage{Role: "user", Content: item.Text}
	}
}

func renderContent(c Content) []wireContentPart {
	parts := make([]wireContentPart, 0, len(c.Items))
	for _, item := range c.Items {
		switch item.Kind {
		case ContentItemImage:
			parts = append(parts, wireContentPart{
				Type:     "image_url",
				ImageURL: &wireImageURL{URL: "data:image/webp;base64," + item.ImageBase64WebP, Detail: "high"},
			})
		default:
			parts = append(parts, wireContentPart{Type: "text", Text: item.Text})
		}
	}
	return parts
}

// Prompt sends prompt to model and returns the completion text. The request
// is retried under the shared transient-error policy (rate-limit errors
// only), bounded by a 60 second wall-clock budget.
func (c *Client) Prompt(ctx context.Context, model string, prompt Prompt) (string, error) {
	messages := make([]wireMessage, len(prompt.Items))
	for i, item := range prompt.Items {
		messages[i] = renderItem(item, model)
	}

	req := chatRequest{Model: model, Messages: messages}
	if !isReasoningModel(model) {
		temp := 0.0
		req.Temperature = &temp
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	logf := func(format string, args ...any) {
		if c.log != nil {
			c.log.Warnf(format, args...)
		}
	}

	resp, err := retryTransient(ctx, logf, func() (*chatResponse, error) {
		return c.doRequest(ctx, body)
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("missing completion in chat response")
	}
	return *resp.Choices[0].Message.Content, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*chatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal chat response (HTTP %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		if resp.Error != nil {
			apiErr.Type = resp.Error.Type
			apiErr.Code = resp.Error.Code
			apiErr.Message = resp.Error.Message
		} else {
			apiErr.Message = string(respBody)
		}
		return nil, apiErr
	}

	return &resp, nil
}
