package commentary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"StockPulse/internal/model"
)

var log = logrus.WithField("component", "commentary")

// DefaultModel is the chat model asked for commentary.
const DefaultModel = openai.GPT3Dot5Turbo

// Commentator produces a short natural-language assessment of a summary.
// Every failure is reported as *model.CommentaryUnavailableError.
type Commentator interface {
	Comment(ctx context.Context, s model.Summary) (string, error)
}

func na(v model.NullFloat) string {
	if !v.Valid {
		return "N/A"
	}
	return v.Format(2)
}

// BuildPrompt renders the Vietnamese technical-analyst prompt for s.
func BuildPrompt(s model.Summary) string {
	var b strings.Builder
	b.WriteString("Bạn là chuyên gia phân tích kỹ thuật.\n")
	fmt.Fprintf(&b, "Hãy nhận định cổ phiếu %s với các thông số:\n", s.Symbol)
	fmt.Fprintf(&b, "- Giá hiện tại: %.2f VND\n", s.Close)
	fmt.Fprintf(&b, "- RSI(14): %s\n", na(s.RSI14))
	fmt.Fprintf(&b, "- EMA20: %s\n", na(s.EMA20))
	fmt.Fprintf(&b, "- EMA50: %s\n", na(s.EMA50))
	fmt.Fprintf(&b, "- EMA200: %s\n", na(s.EMA200))
	fmt.Fprintf(&b, "- Tín hiệu EMA: %s\n", s.Signal.Label())
	b.WriteString("\nViết nhận định ngắn gọn bằng tiếng Việt và gợi ý hành động.")
	return b.String()
}

// Config configures the OpenAI-compatible endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Proxy   string
	Timeout time.Duration
}

// OpenAICommentator calls a chat-completions endpoint.
type OpenAICommentator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New returns an OpenAICommentator, or Disabled when no API key is set.
func New(cfg Config) Commentator {
	if cfg.APIKey == "" {
		log.Info("no API key configured, commentary disabled")
		return Disabled{}
	}
	return NewOpenAICommentator(cfg)
}

func NewOpenAICommentator(cfg Config) *OpenAICommentator {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	transport := &http.Transport{}
	if cfg.Proxy != "" {
		if u, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	oc.HTTPClient = &http.Client{Transport: transport}

	m := cfg.Model
	if m == "" {
		m = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAICommentator{
		client:  openai.NewClientWithConfig(oc),
		model:   m,
		timeout: timeout,
	}
}

func (c *OpenAICommentator) Comment(ctx context.Context, s model.Summary) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(s)},
		},
	})
	if err != nil {
		return "", &model.CommentaryUnavailableError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &model.CommentaryUnavailableError{Err: errors.New("empty choices")}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &model.CommentaryUnavailableError{Err: errors.New("empty content")}
	}
	return text, nil
}

// Disabled is the commentator used when no API key is configured.
type Disabled struct{}

func (Disabled) Comment(context.Context, model.Summary) (string, error) {
	return "", &model.CommentaryUnavailableError{Err: errors.New("no API key configured")}
}
