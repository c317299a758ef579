package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/nutrilabel/pkg/buildinfo"
	"github.com/matzehuels/nutrilabel/pkg/errors"
)

type productsResponse struct {
	Products  []string      `json:"products"`
	Source    string        `json:"source,omitempty"`
	FetchedAt *time.Time    `json:"fetched_at,omitempty"`
	Stale     bool          `json:"stale,omitempty"`
	Skipped   []skippedJSON `json:"skipped,omitempty"`
	Error     *apiError     `json:"error,omitempty"`
}

type skippedJSON struct {
	Row     int    `json:"row"`
	Product string `json:"product,omitempty"`
	Error   string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleProducts lists product names. A failed fetch with stale data still
// answers 200 and carries the error; with no data at all it is an error.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	entry, err := s.loader.Load(r.Context())
	if entry == nil {
		if err == nil {
			err = errors.New(errors.ErrCodeFetch, "no data loaded")
		}
		writeJSONError(w, err)
		return
	}

	resp := productsResponse{
		Products:  entry.Catalog.Names(),
		Source:    entry.Source,
		FetchedAt: &entry.FetchedAt,
		Stale:     entry.Stale,
	}
	if resp.Products == nil {
		resp.Products = []string{}
	}
	for _, sk := range entry.Skipped {
		resp.Skipped = append(resp.Skipped, skippedJSON{Row: sk.Row, Product: sk.Product, Error: errors.UserMessage(sk.Err)})
	}
	if err != nil {
		resp.Error = &apiError{Code: errors.GetCode(err), Error: errors.UserMessage(err)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	rec, err := s.lookup(r.Context(), name)
	if err != nil {
		writeJSONError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
