package api

import (
	"log/slog"
	"net/http"

	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/model"
	"github.com/nitpy-cse/assetreg/internal/store"
)

// LogsHandler serves the login activity log.
type LogsHandler struct {
	DB *db.DB
}

// List handles GET /api/logs.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := store.ListLoginLogs(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list login logs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list login logs")
		return
	}
	if logs == nil {
		logs = []model.LoginLog{}
	}
	jsonResponse(w, http.StatusOK, logs)
}
