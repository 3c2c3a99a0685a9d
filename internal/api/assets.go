package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/model"
	"github.com/nitpy-cse/assetreg/internal/store"
)

// AssetsHandler handles the asset resource endpoints.
type AssetsHandler struct {
	DB *db.DB
}

type createdResponse struct {
	ID int64 `json:"id"`
}

type affectedResponse struct {
	AffectedRows int64 `json:"affectedRows"`
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseAssetQuery(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	assets, err := store.ListAssets(r.Context(), h.DB, q)
	if errors.Is(err, store.ErrUnknownColumn) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to list assets", "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := store.GetAsset(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get asset", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var asset model.Asset
	if err := decodeJSON(r, &asset); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := store.CreateAsset(r.Context(), h.DB, &asset)
	if err != nil {
		slog.Error("failed to create asset", "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("asset created", "id", id, "item", asset.ItemName, "by", actor(r))
	jsonResponse(w, http.StatusCreated, createdResponse{ID: id})
}

// Update handles PUT /api/assets/{id}. Only the columns present in the body
// are written.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields, err := decodeFields(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := store.UpdateAsset(r.Context(), h.DB, id, fields)
	if errors.Is(err, store.ErrUnknownColumn) || errors.Is(err, store.ErrNoFields) {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to update asset", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if n > 0 {
		slog.Info("asset updated", "id", id, "by", actor(r))
	}
	jsonResponse(w, http.StatusOK, affectedResponse{AffectedRows: n})
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := store.DeleteAsset(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to delete asset", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if n > 0 {
		slog.Info("asset deleted", "id", id, "by", actor(r))
	}
	jsonResponse(w, http.StatusOK, affectedResponse{AffectedRows: n})
}

// parseAssetQuery reads sort, order, filter_column, filter_value, limit and
// offset from the query string.
func parseAssetQuery(r *http.Request) (store.AssetQuery, error) {
	v := r.URL.Query()
	q := store.AssetQuery{
		FilterColumn: v.Get("filter_column"),
		FilterValue:  v.Get("filter_value"),
		SortColumn:   v.Get("sort"),
		SortOrder:    v.Get("order"),
		Limit:        store.DefaultAssetLimit,
	}

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
		q.Limit = n
	}
	if s := v.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid offset %q", s)
		}
		q.Offset = n
	}
	return q, nil
}

// decodeFields decodes a flat JSON object of column values. Numbers are kept
// as integers where they are integral so they bind as INTEGER.
func decodeFields(r *http.Request) (map[string]any, error) {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, errors.New("invalid request body")
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case json.Number:
			if i, err := val.Int64(); err == nil {
				fields[k] = i
			} else if f, err := val.Float64(); err == nil {
				fields[k] = f
			} else {
				return nil, fmt.Errorf("invalid number for %q", k)
			}
		case map[string]any, []any:
			return nil, fmt.Errorf("field %q must be a scalar", k)
		default:
			fields[k] = val
		}
	}
	return fields, nil
}

// actor names the authenticated user for log lines.
func actor(r *http.Request) string {
	if claims := GetClaims(r.Context()); claims != nil {
		return claims.Email
	}
	return ""
}
