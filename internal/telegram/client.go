package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultAPIURL = "https://api.telegram.org"

	// Bot API limit for sendMessage text, in characters.
	MaxMessageLength = 4096
)

var ErrNotConfigured = errors.New("telegram bot token or chat id is empty")

// Client sends plain text messages to a single chat through the Bot API.
type Client struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, chatID, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		token:   token,
		chatID:  chatID,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage delivers text, split into several messages when it exceeds
// MaxMessageLength. It stops at the first failed part.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if c.token == "" || c.chatID == "" {
		return ErrNotConfigured
	}
	for i, part := range SplitMessage(text, MaxMessageLength) {
		if err := c.send(ctx, part); err != nil {
			return fmt.Errorf("send part %d: %w", i+1, err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: c.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error prints the endpoint, which embeds the token
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("request bot api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("bot api status %d: decode response: %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !result.OK {
		return fmt.Errorf("bot api status %d: [%d] %s", resp.StatusCode, result.ErrorCode, result.Description)
	}
	return nil
}

// SplitMessage cuts text into parts of at most limit runes, preferring line breaks.
// Blank lines are kept; a part made only of whitespace is not emitted since the
// Bot API rejects empty texts.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
		size    int
		open    bool
	)
	flush := func() {
		if open && strings.TrimSpace(current.String()) != "" {
			parts = append(parts, current.String())
		}
		current.Reset()
		size = 0
		open = false
	}

	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if open && size+1+n <= limit {
			current.WriteByte('\n')
			current.WriteString(line)
			size += 1 + n
			continue
		}
		flush()
		for n > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}
		current.WriteString(line)
		size = n
		open = true
	}
	flush()
	return parts
}
