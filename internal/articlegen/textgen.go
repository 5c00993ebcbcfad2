package articlegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"github.com/zellyn/langblog/internal/config"
)

// Backend produces article text for a prompt.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewBackend returns the backend selected by cfg, or nil when text
// generation is not configured. A command takes precedence over HTTP.
func NewBackend(ctx context.Context, cfg config.TextGen) Backend {
	switch {
	case !cfg.Enabled():
		return nil
	case cfg.Command != "":
		return &CommandBackend{Command: cfg.Command}
	default:
		return NewHTTPBackend(ctx, cfg.Endpoint, cfg.Model, cfg.APIKey, cfg.Timeout.Duration)
	}
}

// HTTPBackend calls an OpenAI-compatible chat completions endpoint.
type HTTPBackend struct {
	Endpoint string
	Model    string
	client   *http.Client
}

// NewHTTPBackend authenticates requests with apiKey as a bearer token.
func NewHTTPBackend(ctx context.Context, endpoint, model, apiKey string, timeout time.Duration) *HTTPBackend {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
		TokenType:   "Bearer",
	}))
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	client.Timeout = timeout
	return &HTTPBackend{Endpoint: endpoint, Model: model, client: client}
}

const systemPrompt = "You write Markdown articles for a programming language learning blog. " +
	"Output only the article body in Markdown, without front matter and without wrapping it in a code fence."

// Complete implements Backend.
func (h *HTTPBackend) Complete(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: h.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2400,
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text generation error: status %d body %s", resp.StatusCode, truncate(string(body), 512))
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("decoding text generation response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("text generation response missing choices")
	}

	return cr.Choices[0].Message.Content, nil
}

// CommandBackend runs a local tool that reads the prompt on stdin and
// writes the article on stdout.
type CommandBackend struct {
	Command string
}

// Complete implements Backend.
func (c *CommandBackend) Complete(ctx context.Context, prompt string) (string, error) {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return "", errors.New("empty text generation command")
	}

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(prompt)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("running %s: %w: %s", fields[0], err, truncate(strings.TrimSpace(stderr.String()), 512))
	}
	return string(out), nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
