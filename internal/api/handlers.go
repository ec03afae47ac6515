package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dishuflix/internal/errors"
	"dishuflix/internal/session"
	"dishuflix/internal/validation"
)

const Version = "0.1.0"

type Handler struct {
	session   *session.Orchestrator
	validator *validation.Validator
	logger    zerolog.Logger
}

func NewHandler(sess *session.Orchestrator, logger zerolog.Logger) *Handler {
	return &Handler{
		session:   sess,
		validator: validation.New(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Browse()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, err := titleID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.session.OpenDetails(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) CloseDetails(w http.ResponseWriter, r *http.Request) {
	h.session.CloseDetails()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PlayTitle(w http.ResponseWriter, r *http.Request) {
	id, err := titleID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.session.Play(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ToggleList(w http.ResponseWriter, r *http.Request) {
	id, err := titleID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	in, err := h.session.ToggleList(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{ID: id, InList: in})
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Player()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) SelectEpisode(w http.ResponseWriter, r *http.Request) {
	var req EpisodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.session.SelectEpisode(req.Episode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ClosePlayer(w http.ResponseWriter, r *http.Request) {
	h.session.ClosePlayer()
	w.WriteHeader(http.StatusNoContent)
}

func titleID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.Validationf("invalid title id %q", raw)
	}
	return id, nil
}

// decode reads and validates a JSON body, writing the error response itself
// when it fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}

// fail writes err as an error response. Coded errors keep their status;
// anything else is a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var de *errors.Error
	if !errors.As(err, &de) {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, string(errors.CodeInternal), "Internal error")
		return
	}

	if de.Code == errors.CodeInternal || de.Code == errors.CodeExternalService {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, de.HTTPStatus(), ErrorResponse{
		Error: ErrorDetail{
			Code:    string(de.Code),
			Message: de.Message,
			Details: de.Details,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
