package commentary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

func summary() model.Summary {
	return model.Summary{
		Symbol: "HPG",
		Date:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		Close:  27650,
		RSI14:  model.Some(61.234),
		EMA20:  model.Some(27100.456),
		EMA50:  model.Some(26500),
		Signal: model.Buy,
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(summary())
	assert.Contains(t, p, "Hãy nhận định cổ phiếu HPG")
	assert.Contains(t, p, "- Giá hiện tại: 27650.00 VND")
	assert.Contains(t, p, "- RSI(14): 61.23")
	assert.Contains(t, p, "- EMA20: 27100.46")
	assert.Contains(t, p, "- EMA200: N/A")
	assert.Contains(t, p, "- Tín hiệu EMA: MUA")
	assert.Contains(t, p, "gợi ý hành động")
}

func TestOpenAICommentator_Comment(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  Xu hướng tăng, có thể mua thăm dò. "},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	text, err := c.Comment(context.Background(), summary())
	require.NoError(t, err)
	assert.Equal(t, "Xu hướng tăng, có thể mua thăm dò.", text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, BuildPrompt(summary()), got.Messages[0].Content)
}

func TestOpenAICommentator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
		}},
		{"empty choices", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[]}`)
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewOpenAICommentator(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 200 * time.Millisecond})
			text, err := c.Comment(context.Background(), summary())
			assert.Empty(t, text)
			var cu *model.CommentaryUnavailableError
			require.ErrorAs(t, err, &cu)
			assert.NotNil(t, cu.Unwrap())
		})
	}
}

func TestNew_WithoutKeyIsDisabled(t *testing.T) {
	c := New(Config{})
	assert.IsType(t, Disabled{}, c)

	_, err := c.Comment(context.Background(), summary())
	var cu *model.CommentaryUnavailableError
	assert.ErrorAs(t, err, &cu)
}
