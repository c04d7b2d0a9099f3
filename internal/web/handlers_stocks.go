package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/codeimport/internal/core"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody bounds JSON request bodies other than stock creation.
const maxJSONBody = 64 << 10

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest(fmt.Errorf("invalid %s %q", name, raw))
	}
	return id, nil
}

// decodeJSON reads a single JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Errorf("decode body: %w", err))
	}
	return nil
}

// handleCreateOffer creates an offer from a JSON body.
func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var p core.OfferParams
	if err := decodeJSON(w, r, maxJSONBody, &p); err != nil {
		respondError(w, r, err)
		return
	}

	offer, err := s.service.CreateOffer(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, offer)
}

// handleGetOffer returns one offer.
func (s *Server) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "offerID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	offer, err := s.service.GetOffer(r.Context(), offerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, offer)
}

// handleCreateStock creates a stock, optionally with activation codes.
func (s *Server) handleCreateStock(w http.ResponseWriter, r *http.Request) {
	offerID, err := pathID(r, "offerID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var p core.StockParams
	if err := decodeJSON(w, r, s.maxBody, &p); err != nil {
		respondError(w, r, err)
		return
	}
	p.OfferID = offerID
	p.Language = s.requestLanguage(r)

	stock, err := s.service.CreateStock(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, stock)
}

// handleUpdateStock applies a partial update to a stock. Fields left out of
// the body keep their value.
func (s *Server) handleUpdateStock(w http.ResponseWriter, r *http.Request) {
	stockID, err := pathID(r, "stockID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var p core.StockUpdate
	if err := decodeJSON(w, r, maxJSONBody, &p); err != nil {
		respondError(w, r, err)
		return
	}
	p.StockID = stockID

	stock, err := s.service.UpdateStock(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stock)
}

// handleImportCodes appends the codes of an uploaded file to a stock.
// Form fields: file, and optionally expirationDatetime (RFC 3339).
func (s *Server) handleImportCodes(w http.ResponseWriter, r *http.Request) {
	defer cleanupForm(r)

	stockID, err := pathID(r, "stockID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	f, name, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var expiration *time.Time
	if raw := strings.TrimSpace(r.FormValue("expirationDatetime")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, r, badRequest(fmt.Errorf("invalid expirationDatetime %q", raw)))
			return
		}
		expiration = &t
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ImportCodes(ctx, core.ImportParams{
		StockID:            stockID,
		FileName:           name,
		File:               f,
		ExpirationDatetime: expiration,
		Language:           s.requestLanguage(r),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}

// handleListImports returns a stock's import history, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	stockID, err := pathID(r, "stockID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, r, badRequest(fmt.Errorf("invalid limit %q", raw)))
			return
		}
	}

	entries, err := s.service.ListImports(r.Context(), stockID, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"stockId": stockID,
		"imports": entries,
	})
}

// handleBookActivationCode books one activation code of the stock.
func (s *Server) handleBookActivationCode(w http.ResponseWriter, r *http.Request) {
	stockID, err := pathID(r, "stockID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	booking, err := s.service.BookActivationCode(r.Context(), stockID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, booking)
}
