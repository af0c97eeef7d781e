// Package relay forwards one Turn Request at a time to the completion capability.
// It keeps no conversation state between requests.
package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/comigor/jokebot-go/internal/api"
	"github.com/comigor/jokebot-go/internal/history"
	"github.com/comigor/jokebot-go/internal/journal"
	"github.com/comigor/jokebot-go/internal/llm"
	"github.com/comigor/jokebot-go/internal/logger"
)

// Persona is attached to every upstream call. Requests can neither read nor override it.
const Persona = "آپ ایک دوستانہ اردو چیٹ بوٹ ہیں۔ آپ کا لہجہ خوشگوار اور مددگار ہونا چاہیے۔ آپ روزانہ لطیفے سناتے ہیں اور اردو میں بات کرتے ہیں۔ آپ کا نام 'اردو جوک بوٹ' ہے۔ ہمیشہ اردو (RTL) میں جواب دیں۔"

const maxBodyBytes = 1 << 20

// Relay is the chat endpoint.
type Relay struct {
	client    llm.Client
	configErr error
	journal   *journal.Journal
	timeout   time.Duration
}

// New creates a relay. client may be nil, in which case every turn fails with a
// ConfigurationError carrying configErr (llm.ErrMissingAPIKey when configErr is nil).
// journal may be nil. A zero timeout leaves upstream calls bounded only by the request.
func New(client llm.Client, configErr error, j *journal.Journal, timeout time.Duration) *Relay {
	if client == nil && configErr == nil {
		configErr = llm.ErrMissingAPIKey
	}
	return &Relay{client: client, configErr: configErr, journal: j, timeout: timeout}
}

// Validate checks a decoded request. A missing history is treated as empty.
func Validate(req *api.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return &ValidationError{Message: "message is required"}
	}
	if req.History == nil {
		req.History = []api.Content{}
	}
	for _, c := range req.History {
		if !history.Role(c.Role).Valid() {
			return &ValidationError{Message: "history role must be user or model"}
		}
	}
	return nil
}

// Reply runs one completion call for req, which must already be valid.
func (rl *Relay) Reply(ctx context.Context, req api.ChatRequest) (string, error) {
	if rl.client == nil {
		return "", &ConfigurationError{Err: rl.configErr}
	}

	if rl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rl.timeout)
		defer cancel()
	}

	text, err := rl.client.Generate(ctx, llm.Request{
		Contents:          api.WithUserMessage(req.History, req.Message),
		SystemInstruction: Persona,
	})
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	return text, nil
}

// Chat handles POST /api/chat.
func (rl *Relay) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	reply, err := rl.Reply(r.Context(), req)
	rl.record(reqID, req, reply, err)

	if err != nil {
		if IsConfigurationError(err) {
			logger.L.Error("relay misconfigured", "request_id", reqID, "error", err)
		} else {
			logger.L.Error("chat API error", "request_id", reqID, "error", err)
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, api.ChatResponse{Text: &reply})
}

func (rl *Relay) record(reqID string, req api.ChatRequest, reply string, err error) {
	if rl.journal == nil {
		return
	}
	ex := journal.Exchange{
		RequestID:  reqID,
		Message:    req.Message,
		HistoryLen: len(req.History),
		Reply:      reply,
	}
	if err != nil {
		ex.Error = err.Error()
	}
	rl.journal.Record(ex)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L.Warn("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}
