package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"aiscribble/internal/config"
	"aiscribble/internal/game"
)

// Client talks to an OpenAI-compatible chat completions API to produce
// drawings and guesses. Calls are retried a bounded number of times with a
// fixed backoff before the failure is surfaced to the caller.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxRetries uint64
	backoff    time.Duration
}

// New creates a capability client from the AI settings
func New(cfg config.AISettings) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff,
	}
}

// Draw asks the model for an SVG drawing of the word and returns both the
// raw vector text and a data URI encoding transports can hand to clients.
func (c *Client) Draw(ctx context.Context, model, word string) (game.Drawing, error) {
	prompt := fmt.Sprintf(
		"Draw %q as a simple, recognizable SVG image for a guessing game. "+
			"Respond with only the SVG markup, no explanation. "+
			"Use a 400x300 viewBox and flat colors.", word)

	content, err := c.complete(ctx, chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return game.Drawing{}, fmt.Errorf("drawing generation failed: %w", err)
	}

	svg, err := extractSVG(content)
	if err != nil {
		return game.Drawing{}, err
	}

	return game.Drawing{
		SVG:   svg,
		Image: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
	}, nil
}

// Guess asks the model what the drawn image shows. The returned word is
// normalized ready for comparison with the target.
func (c *Client) Guess(ctx context.Context, model, image string) (string, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: "This is a drawing from a guessing game. " +
						"What does it show? Answer with a single word, nothing else."},
					{Type: "image_url", ImageURL: &imageURL{URL: image}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("image guessing failed: %w", err)
	}

	guess := game.Normalize(content)
	guess = strings.Trim(guess, ".!\"'")
	if guess == "" {
		return "", fmt.Errorf("model %s returned an empty guess", model)
	}
	return guess, nil
}

// complete performs one chat completion with retries and returns the first
// choice's message content.
func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.backoff), c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		log.Warn().
			Err(err).
			Str("model", req.Model).
			Dur("retry_in", wait).
			Msg("AI call failed, retrying")
	}

	return backoff.RetryNotifyWithData(func() (string, error) {
		return c.completeOnce(ctx, req)
	}, b, notify)
}

func (c *Client) completeOnce(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("encoding request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai api returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage content is either a plain string or a list of contentPart for
// multimodal requests
type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// extractSVG pulls the SVG element out of a model response, tolerating
// markdown fences and prose around it
func extractSVG(content string) (string, error) {
	start := strings.Index(content, "<svg")
	end := strings.LastIndex(content, "</svg>")
	if start < 0 || end < 0 || end < start {
		return "", fmt.Errorf("response contained no svg element")
	}
	return content[start : end+len("</svg>")], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
