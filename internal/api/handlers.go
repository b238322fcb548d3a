package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finlens/leienrich/internal/cache"
	"github.com/finlens/leienrich/internal/csvio"
	"github.com/finlens/leienrich/internal/domain"
	"github.com/finlens/leienrich/internal/enrich"
	"github.com/finlens/leienrich/internal/resolver"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	enrichSvc *enrich.Service
	resolver  *resolver.Resolver
	store     *cache.Store
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readCSVBody accepts either a multipart form with a "file" field or a raw
// CSV request body.
func readCSVBody(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// --- EnrichCSV ---

// EnrichCSV accepts a transactions CSV and responds with the enriched CSV.
// The enrichment run summary travels in X-Enrichment-* headers so the body
// stays a plain dataset.
func (h *Handlers) EnrichCSV(w http.ResponseWriter, r *http.Request) {
	data, err := readCSVBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	table, err := csvio.ReadTable(strings.NewReader(string(data)))
	if err != nil {
		writeError(w, http.StatusBadRequest, "parse csv: "+err.Error())
		return
	}

	enriched, result, err := h.enrichSvc.EnrichTable(r.Context(), table)
	if err != nil {
		var inputErr *enrich.InputError
		if errors.As(err, &inputErr) {
			writeError(w, http.StatusUnprocessableEntity, inputErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("X-Enrichment-Run-Id", result.RunID)
	w.WriteHeader(http.StatusOK)
	if err := csvio.WriteTable(w, enriched); err != nil {
		log.Printf("[api] write enriched csv: %v", err)
	}
}

// --- ListEntities ---

func (h *Handlers) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities := h.store.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"total":    len(entities),
	})
}

// --- GetEntity ---

// GetEntity resolves a single LEI through the usual cache-first path, so
// a miss here reaches the registry.
func (h *Handlers) GetEntity(w http.ResponseWriter, r *http.Request) {
	lei := chi.URLParam(r, "lei")
	if !domain.ValidLEI(lei) {
		writeError(w, http.StatusBadRequest, "malformed LEI")
		return
	}

	entity, ok, err := h.resolver.ResolveOne(r.Context(), lei)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusBadGateway, "LEI could not be resolved")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"lei":    lei,
		"entity": entity,
	})
}

// --- GetCacheStats ---

func (h *Handlers) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	all := h.store.All()
	empty := 0
	for _, e := range all {
		if e.IsEmpty() {
			empty++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries":     len(all),
		"known_empty": empty,
	})
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
