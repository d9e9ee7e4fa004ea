package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RuleBadge/internal/model"
)

func TestSend_PostsMessage(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = server.URL
	require.NoError(t, tn.Send(context.Background(), "hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
}

func TestSendWithRetry_ClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = server.URL
	err := tn.SendWithRetry(context.Background(), "hello", 3)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFormatChange(t *testing.T) {
	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	msg := FormatChange("rules", &model.RunResult{
		RunAt:      at,
		Count:      12,
		Previous:   &model.Observation{Date: at.AddDate(0, 0, -1), Count: 10},
		HistoryLen: 4,
		ListCounts: map[string]int{"easylist": 7},
	}, "2006-01-02")

	assert.Contains(t, msg, "10 → 12 (+2)")
	assert.Contains(t, msg, "2025-06-30")
	assert.Contains(t, msg, "easylist: 7")
}

func TestFormatChange_EscapesNames(t *testing.T) {
	msg := FormatChange("ads & <trackers>", &model.RunResult{
		RunAt:      time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC),
		Count:      3,
		ListCounts: map[string]int{"a<b": 1},
	}, "2006-01-02")

	assert.Contains(t, msg, "<b>ads &amp; &lt;trackers&gt;</b>")
	assert.Contains(t, msg, "a&lt;b: 1")
	assert.NotContains(t, msg, "<trackers>")
}
