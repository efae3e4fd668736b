package routes

import (
	"errors"
	"net/http"

	"mineai/mineai/config"
	"mineai/mineai/controllers"
	"mineai/mineai/middlewares"
	"mineai/mineai/sources/psql/dao"
	httputils "mineai/mineai/utils/http"

	"github.com/go-chi/chi/v5"
)

func DocumentRoutes(ctrl *controllers.DocumentController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middlewares.AuthMiddleware(cfg))

	// GET /documents : knowledge-base listing for the UI
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		docs, err := ctrl.List(r.Context())
		if err != nil {
			httputils.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputils.WriteJSON(w, http.StatusOK, docs)
	})

	// GET /documents/{document_id}/file : presigned download URL
	r.Get("/{document_id}/file", func(w http.ResponseWriter, r *http.Request) {
		url, err := ctrl.FileURL(r.Context(), chi.URLParam(r, "document_id"))
		if err != nil {
			switch {
			case errors.Is(err, dao.ErrDocumentNotFound), errors.Is(err, controllers.ErrNoStoredFile):
				httputils.WriteError(w, http.StatusNotFound, "Document not found")
			default:
				httputils.WriteError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		httputils.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
	})

	return r
}
