package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comigor/jokebot-go/internal/api"
	"github.com/comigor/jokebot-go/internal/history"
	"github.com/comigor/jokebot-go/internal/llm"
	"github.com/comigor/jokebot-go/internal/relay"
)

func relayServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRelay_Success(t *testing.T) {
	var got api.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, api.ChatPath, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"text":"hello"}`))
	}))
	defer srv.Close()

	c := NewHTTPRelay(srv.URL+"/", time.Second)
	text, err := c.Send(context.Background(), api.ChatRequest{
		Message: "hi",
		History: api.FromTurns([]history.Turn{history.ModelTurn(history.Greeting)}),
	})
	require.NoError(t, err)
	require.Equal(t, "hello", text)
	require.Equal(t, "hi", got.Message)
	require.Len(t, got.History, 1)
}

func TestHTTPRelay_Failures(t *testing.T) {
	t.Run("500 with error body", func(t *testing.T) {
		srv := relayServer(t, http.StatusInternalServerError, `{"error":"GEMINI_API_KEY is not configured"}`)
		_, err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
		var se *StatusError
		require.ErrorAs(t, err, &se)
		require.Equal(t, http.StatusInternalServerError, se.Status)
		require.Equal(t, "GEMINI_API_KEY is not configured", se.Message)
	})

	t.Run("non-json error body", func(t *testing.T) {
		srv := relayServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)
		_, err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
		var se *StatusError
		require.ErrorAs(t, err, &se)
		require.Equal(t, http.StatusBadGateway, se.Status)
		require.Empty(t, se.Message)
	})

	t.Run("2xx without text", func(t *testing.T) {
		srv := relayServer(t, http.StatusOK, `{"reply":"wrong field"}`)
		_, err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
		require.ErrorIs(t, err, ErrMissingText)
	})

	t.Run("2xx with null text", func(t *testing.T) {
		srv := relayServer(t, http.StatusOK, `{"text":null}`)
		_, err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
		require.ErrorIs(t, err, ErrMissingText)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := relayServer(t, http.StatusOK, `{"text":`)
		_, err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
		require.Error(t, err)
	})

	t.Run("network error", func(t *testing.T) {
		srv := relayServer(t, http.StatusOK, `{}`)
		url := srv.URL
		srv.Close()
		_, err := NewHTTPRelay(url, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
		require.ErrorContains(t, err, "relay request failed")
	})
}

func TestHTTPRelay_EmptyTextIsSuccess(t *testing.T) {
	srv := relayServer(t, http.StatusOK, `{"text":""}`)
	text, err := NewHTTPRelay(srv.URL, time.Second).Send(context.Background(), api.ChatRequest{Message: "hi"})
	require.NoError(t, err)
	require.Equal(t, "", text)
}

// scriptedLLM stands in for the completion capability behind a real relay.
type scriptedLLM struct {
	text  string
	err   error
	gate  chan struct{}
	calls atomic.Int32
}

func (m *scriptedLLM) Generate(ctx context.Context, r llm.Request) (string, error) {
	m.calls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	return m.text, m.err
}

// countingServer serves the relay router and counts POSTs to the chat route.
func countingServer(t *testing.T, rl *relay.Relay) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var posts atomic.Int32
	router := relay.NewRouter(rl, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == api.ChatPath {
			posts.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &posts
}

func TestEndToEnd_Success(t *testing.T) {
	capability := &scriptedLLM{text: "ایک دفعہ کا ذکر ہے..."}
	srv, _ := countingServer(t, relay.New(capability, nil, nil, time.Second))
	s := NewSession(NewHTTPRelay(srv.URL, time.Second), nil, Options{})

	reply, ok := s.Send(context.Background(), "ایک لطیفہ سناؤ")
	require.True(t, ok)
	require.Equal(t, "ایک دفعہ کا ذکر ہے...", reply.Text)

	turns := s.History()
	require.Len(t, turns, 3)
	require.Equal(t, history.RoleModel, turns[0].Role)
	require.Equal(t, history.UserTurn("ایک لطیفہ سناؤ"), turns[1])
	require.Equal(t, history.RoleModel, turns[2].Role)
}

func TestEndToEnd_CapabilityFailure(t *testing.T) {
	capability := &scriptedLLM{err: errors.New("upstream exploded")}
	srv, _ := countingServer(t, relay.New(capability, nil, nil, time.Second))
	s := NewSession(NewHTTPRelay(srv.URL, time.Second), nil, Options{})

	_, ok := s.Send(context.Background(), "hi")
	require.True(t, ok)

	turns := s.History()
	require.Len(t, turns, 3)
	require.Equal(t, history.ModelTurn(ApologyText), turns[2])
}

func TestEndToEnd_MissingCredential(t *testing.T) {
	srv, _ := countingServer(t, relay.New(nil, nil, nil, time.Second))
	s := NewSession(NewHTTPRelay(srv.URL, time.Second), nil, Options{})

	s.Send(context.Background(), "hi")
	require.Equal(t, history.ModelTurn(ApologyText), s.Store().Last())
}

func TestEndToEnd_RapidSendsPostOnce(t *testing.T) {
	capability := &scriptedLLM{text: "done", gate: make(chan struct{})}
	srv, posts := countingServer(t, relay.New(capability, nil, nil, 5*time.Second))
	s := NewSession(NewHTTPRelay(srv.URL, 5*time.Second), nil, Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Send(context.Background(), "same")
	}()
	require.Eventually(t, func() bool { return capability.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, ok := s.Send(context.Background(), "same")
	require.False(t, ok)

	close(capability.gate)
	wg.Wait()

	require.Equal(t, int32(1), posts.Load())
	require.Len(t, s.History(), 3)
}
