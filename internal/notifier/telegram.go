package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var log = logrus.WithField("component", "notifier")

// DefaultAPIBase is the Telegram Bot API root.
const DefaultAPIBase = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *http.Client
	BackOff  func() backoff.BackOff

	// Limiter paces outgoing calls; Telegram throttles bursts to one chat.
	Limiter *rate.Limiter
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  DefaultAPIBase,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

func (t *TelegramNotifier) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.APIBase, t.BotToken, name)
}

// apiError is a non-success Bot API response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram API error: status %d, body: %s", e.Status, e.Body)
}

func (t *TelegramNotifier) do(req *http.Request) error {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return err
		}
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &apiError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := t.do(req); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendPhoto uploads a PNG with an HTML caption.
func (t *TelegramNotifier) SendPhoto(ctx context.Context, caption string, png []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"chat_id":    t.ChatID,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	part, err := mw.CreateFormFile("photo", "chart.png")
	if err != nil {
		return fmt.Errorf("create photo part: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("write photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.method("sendPhoto"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := t.do(req); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (t *TelegramNotifier) newBackOff() backoff.BackOff {
	if t.BackOff != nil {
		return t.BackOff()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	return b
}

// SendWithRetry sends a message with exponential backoff retry. Client
// errors other than rate limiting are not retried.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	return t.retry(ctx, maxRetries, func() error { return t.Send(ctx, text) })
}

// SendPhotoWithRetry is SendPhoto with the retry policy of SendWithRetry.
func (t *TelegramNotifier) SendPhotoWithRetry(ctx context.Context, caption string, png []byte, maxRetries int) error {
	return t.retry(ctx, maxRetries, func() error { return t.SendPhoto(ctx, caption, png) })
}

func (t *TelegramNotifier) retry(ctx context.Context, maxRetries int, op func() error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		var ae *apiError
		if errors.As(err, &ae) && ae.Status < 500 && ae.Status != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		log.WithError(err).Warnf("telegram send failed (attempt %d/%d), retrying in %v", attempt, maxRetries+1, next)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(t.newBackOff(), uint64(maxRetries)), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return fmt.Errorf("telegram delivery failed after %d attempts: %w", attempt, err)
	}
	return nil
}
