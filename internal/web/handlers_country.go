package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/logging"
)

//go:generate mockgen -source=handlers_country.go -destination=mocks/country-mocks.go -package=mocks

// CountryService is the set of country operations the HTTP adapter needs.
// *core.Service implements it.
type CountryService interface {
	GetAll(ctx context.Context) ([]core.Country, error)
	Get(ctx context.Context, code string) (*core.Country, error)
	Store(ctx context.Context, country core.Country) error
	Edit(ctx context.Context, code string, country core.Country) (*core.Country, error)
	Delete(ctx context.Context, code string) error
}

// CountryHandler serves /api/country.
type CountryHandler struct {
	service CountryService
}

func NewCountryHandler(service CountryService) *CountryHandler {
	return &CountryHandler{service: service}
}

// Routes mounts the handlers on r.
func (h *CountryHandler) Routes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleStore)
	r.Get("/{code}", h.handleGet)
	r.Patch("/{code}", h.handleEdit)
	r.Delete("/{code}", h.handleDelete)
}

func (h *CountryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	countries, err := h.service.GetAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if countries == nil {
		countries = []core.Country{}
	}
	writeJSON(w, r, http.StatusOK, countries)
}

func (h *CountryHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	country, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, country)
}

func (h *CountryHandler) handleStore(w http.ResponseWriter, r *http.Request) {
	var req storeCountryRequest
	if err := decodeBody(r.Body, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondBadRequest(w, r, validationMessage(err))
		return
	}

	country := req.country()
	if err := h.service.Store(r.Context(), country); err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "operation", "store", "code", country.IsoAlpha2).Info("country created")
	w.WriteHeader(http.StatusNoContent)
}

// handleEdit resolves the record before reading the body, so an unknown or
// malformed code is reported ahead of any payload problem.
func (h *CountryHandler) handleEdit(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	existing, err := h.service.Get(r.Context(), code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req editCountryRequest
	if err := decodeBody(r.Body, &req); err != nil {
		respondError(w, r, err)
		return
	}

	// A body with no editable fields leaves the record as it is.
	patch := req.patch()
	if patch.IsEmpty() {
		writeJSON(w, r, http.StatusOK, existing)
		return
	}

	updated, err := h.service.Edit(r.Context(), code, patch.Apply(*existing))
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "operation", "edit", "code", updated.IsoAlpha2).Info("country updated")
	writeJSON(w, r, http.StatusOK, updated)
}

func (h *CountryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.service.Delete(r.Context(), code); err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "operation", "delete", "code", code).Info("country deleted")
	w.WriteHeader(http.StatusNoContent)
}
