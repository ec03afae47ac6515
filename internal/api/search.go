package api

import (
	"net/http"

	"dishuflix/internal/session"
)

func (h *Handler) OpenSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.session.OpenSearch(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.GetSearch(w, r)
}

func (h *Handler) CloseSearch(w http.ResponseWriter, r *http.Request) {
	h.session.CloseSearch()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.session.SetQuery(req.Query); err != nil {
		h.fail(w, r, err)
		return
	}
	// suggestions land after the debounce window; clients poll GET /search
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Search()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if !h.decode(w, r, &req) {
		return
	}

	var (
		view session.PlayerView
		err  error
	)
	if req.SuggestionID != 0 {
		view, err = h.session.SelectSuggestion(req.SuggestionID)
	} else {
		view, err = h.session.Submit(req.Query)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
