package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"mineai/mineai/config"
	"mineai/mineai/controllers"
	"mineai/mineai/middlewares"
	"mineai/mineai/sources/psql/dao"
	httputils "mineai/mineai/utils/http"

	"github.com/go-chi/chi/v5"
)

func ConversationRoutes(ctrl *controllers.ConversationController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	// GET /conversations : caller's threads, most recently active first
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middlewares.UserIDKey).(string)
		convs, err := ctrl.List(r.Context(), userID)
		if err != nil {
			httputils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputils.WriteJSON(w, http.StatusOK, convs)
	})

	// POST /conversations : create a thread
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middlewares.UserIDKey).(string)
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputils.WriteError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		conv, err := ctrl.Create(r.Context(), userID, req.Title)
		if err != nil {
			httputils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputils.WriteJSON(w, http.StatusCreated, conv)
	})

	// DELETE /conversations/{conversation_id}
	r.Delete("/{conversation_id}", func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middlewares.UserIDKey).(string)
		err := ctrl.Delete(r.Context(), userID, chi.URLParam(r, "conversation_id"))
		if err != nil {
			writeOwnershipError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// GET /conversations/{conversation_id}/messages
	r.Get("/{conversation_id}/messages", func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middlewares.UserIDKey).(string)
		msgs, err := ctrl.Messages(r.Context(), userID, chi.URLParam(r, "conversation_id"))
		if err != nil {
			writeOwnershipError(w, err)
			return
		}
		httputils.WriteJSON(w, http.StatusOK, msgs)
	})

	// POST /conversations/{conversation_id}/messages : the client persists
	// the assistant message here once it has drained the chat stream.
	r.Post("/{conversation_id}/messages", func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middlewares.UserIDKey).(string)
		var req struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputils.WriteError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		if (req.Role != "user" && req.Role != "assistant") || req.Content == "" {
			httputils.WriteError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		msg, err := ctrl.AppendMessage(r.Context(), userID, chi.URLParam(r, "conversation_id"), req.Role, req.Content)
		if err != nil {
			writeOwnershipError(w, err)
			return
		}
		httputils.WriteJSON(w, http.StatusCreated, msg)
	})

	return r
}

func writeOwnershipError(w http.ResponseWriter, err error) {
	if errors.Is(err, dao.ErrNotOwned) {
		httputils.WriteError(w, http.StatusForbidden, "Conversation not found or access denied")
		return
	}
	httputils.WriteError(w, http.StatusInternalServerError, err.Error())
}
