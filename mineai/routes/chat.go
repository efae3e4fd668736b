package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"unicode/utf8"

	"mineai/mineai/config"
	"mineai/mineai/controllers"
	"mineai/mineai/middlewares"
	"mineai/mineai/services/llm"
	"mineai/mineai/sources/psql/dao"
	"mineai/mineai/types"
	httputils "mineai/mineai/utils/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	// POST /chat : run one RAG turn and relay the completion stream. The
	// body is parsed and validated before credentials are checked, so a
	// request that is both malformed and unauthenticated gets a 400.
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputils.WriteJSON(w, http.StatusBadRequest, map[string]string{
				"error": "Invalid input", "details": err.Error(),
			})
			return
		}
		if err := ctrl.Validate(req); err != nil {
			writeChatError(w, err)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			httputils.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		userID, ok := middlewares.ResolveUserID(cfg, auth)
		if !ok {
			httputils.WriteError(w, http.StatusUnauthorized, "Invalid authentication")
			return
		}

		body, sources, err := ctrl.Run(r.Context(), userID, req)
		if err != nil {
			writeChatError(w, err)
			return
		}
		defer body.Close()

		sourcesJSON, _ := json.Marshal(sources)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("X-Sources", string(sourcesJSON))
		w.WriteHeader(http.StatusOK)
		relayStream(w, body)
	})

	// Streaming over websocket for clients that can't consume fetch streams.
	// First frame carries the token and the chat request; after a sources
	// frame, upstream bytes are forwarded as-is.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusInternalError, "internal error")

		ctx := r.Context()
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "unsupported data")
			return
		}
		var input struct {
			Token       string            `json:"token"`
			ChatRequest types.ChatRequest `json:"chat_request"`
		}
		if err := json.Unmarshal(data, &input); err != nil {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid json"}`))
			return
		}

		userID, ok := middlewares.ResolveUserID(cfg, "Bearer "+input.Token)
		if !ok {
			conn.Write(ctx, websocket.MessageText, []byte(`{"error":"invalid token"}`))
			conn.Close(websocket.StatusPolicyViolation, "invalid token")
			return
		}

		body, sources, err := ctrl.Run(ctx, userID, input.ChatRequest)
		if err != nil {
			msg, _ := json.Marshal(map[string]string{"error": err.Error()})
			conn.Write(ctx, websocket.MessageText, msg)
			conn.Close(websocket.StatusInternalError, "chat error")
			return
		}
		defer body.Close()

		header, _ := json.Marshal(map[string]interface{}{"sources": sources})
		if err := conn.Write(ctx, websocket.MessageText, header); err != nil {
			return
		}

		// Text frames must each be valid UTF-8 (RFC 6455 §8.1), so a
		// multi-byte rune that straddles a read boundary is held back and
		// sent with the next frame.
		buf := make([]byte, 4096)
		var pending []byte
		for {
			n, rerr := body.Read(buf)
			if n > 0 {
				pending = append(pending, buf[:n]...)
				cut := completeRunes(pending)
				if cut > 0 {
					if werr := conn.Write(ctx, websocket.MessageText, pending[:cut]); werr != nil {
						return
					}
					pending = append(pending[:0], pending[cut:]...)
				}
			}
			if rerr != nil {
				break
			}
		}
		if len(pending) > 0 {
			if werr := conn.Write(ctx, websocket.MessageText, pending); werr != nil {
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	})
	return r
}

// completeRunes returns the length of the longest prefix of b that does not
// end in the middle of a UTF-8 sequence. At most the last three bytes are
// held back; bytes that cannot start a rune are passed through unchanged.
func completeRunes(b []byte) int {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		c := b[i]
		if c < utf8.RuneSelf {
			return len(b)
		}
		if !utf8.RuneStart(c) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}

// relayStream pipes upstream bytes to the caller as they arrive. No
// buffering beyond the copy buffer, flush after every write; a caller
// disconnect cancels the request context, which tears down the upstream
// read on the next iteration.
func relayStream(w http.ResponseWriter, body io.Reader) {
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func writeChatError(w http.ResponseWriter, err error) {
	var invalid *controllers.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		httputils.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid input", "details": invalid.Details,
		})
	case errors.Is(err, dao.ErrNotOwned):
		httputils.WriteError(w, http.StatusForbidden, "Conversation not found or access denied")
	case errors.Is(err, llm.ErrRateLimited):
		httputils.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	case errors.Is(err, llm.ErrPaymentRequired):
		httputils.WriteError(w, http.StatusPaymentRequired, "Payment required. Please add credits to your workspace.")
	case errors.Is(err, llm.ErrUpstream):
		httputils.WriteError(w, http.StatusInternalServerError, "AI gateway error")
	default:
		httputils.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
