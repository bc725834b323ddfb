package mirror

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-worklog/internal/daylog"
)

func TestClockLayout(t *testing.T) {
	assert.Equal(t, "3:04 PM", clockLayout("en-US"))
	assert.Equal(t, "3:04 PM", clockLayout("en-GB"))
	assert.Equal(t, "15:04", clockLayout("fi-FI"))
	assert.Equal(t, "15:04", clockLayout("de"))
	assert.Equal(t, "3:04 PM", clockLayout("not a tag"))
}

func TestBuildPayload(t *testing.T) {
	amIn := time.Date(2026, time.March, 9, 8, 5, 0, 0, time.UTC)
	pmOut := time.Date(2026, time.March, 9, 17, 30, 0, 0, time.UTC)
	day := daylog.DayKeyOf(amIn)

	c := NewClient("http://sink", time.Second, "en-US")
	payload := c.BuildPayload(day, daylog.Entry{
		AmIn:     &amIn,
		PmOut:    &pmOut,
		Activity: "standup",
	})

	assert.Equal(t, "2026-03-09", payload.DateKey)
	assert.Equal(t, "8:05 AM", payload.AmIn)
	assert.Equal(t, "", payload.AmOut, "unset slots render empty")
	assert.Equal(t, "5:30 PM", payload.PmOut)
	assert.Equal(t, "standup", payload.Activity)
	assert.Equal(t, "", payload.Accomplished)
}

func TestSend_OK(t *testing.T) {
	var received Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(Response{Result: "ok", Logs: []string{"row updated"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "en-US")
	err := c.Send(context.Background(), Payload{DateKey: "2026-03-09", Activity: "A"})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09", received.DateKey)
}

func TestSend_NotFoundIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Result: "not_found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "en-US")
	err := c.Send(context.Background(), Payload{DateKey: "2026-03-09"})
	assert.Error(t, err)
}

func TestSend_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, "en-US")
	assert.Error(t, c.Send(context.Background(), Payload{DateKey: "2026-03-09"}))
}

func TestSend_NotConfigured(t *testing.T) {
	c := NewClient("", time.Second, "en-US")
	assert.ErrorIs(t, c.Send(context.Background(), Payload{}), ErrNotConfigured)
	assert.False(t, c.Configured())
}
