package api

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"dishuflix/internal/errors"
	"dishuflix/internal/onboarding"
)

func (h *Handler) inviteResponse(result onboarding.InviteResult) InviteResponse {
	gate := h.session.Gate()
	resp := InviteResponse{Result: result, State: gate.State(), Invite: gate.Invite()}
	if sig, ok := gate.Signal(); ok {
		resp.Signal = &sig
	}
	return resp
}

func (h *Handler) SubmitInvite(w http.ResponseWriter, r *http.Request) {
	var req InviteCodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.session.Gate().SubmitInviteCode(req.Code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.inviteResponse(result))
}

func (h *Handler) EnterInviteChar(w http.ResponseWriter, r *http.Request) {
	pos, err := invitePosition(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req InviteCharRequest
	if !h.decode(w, r, &req) {
		return
	}

	ch, _ := utf8.DecodeRuneInString(req.Char)
	result, err := h.session.Gate().EnterInviteChar(pos, ch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.inviteResponse(result))
}

func (h *Handler) ClearInviteChar(w http.ResponseWriter, r *http.Request) {
	pos, err := invitePosition(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.session.Gate().ClearInviteChar(pos); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.inviteResponse(""))
}

func invitePosition(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "pos")
	pos, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Validationf("invalid invite position %q", raw)
	}
	return pos, nil
}

func (h *Handler) SubmitName(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}

	gate := h.session.Gate()
	if err := gate.SubmitName(req.Name); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OnboardingResponse{State: gate.State(), Name: gate.DisplayName()})
}

// Pay runs the checkout through the configured provider.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.session.Pay(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.paymentResponse(outcome))
}

// ReportPaymentResult accepts an outcome from an external checkout surface.
func (h *Handler) ReportPaymentResult(w http.ResponseWriter, r *http.Request) {
	var req PaymentResultRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome, err := onboarding.ParseOutcome(req.Outcome)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.session.ReportPaymentResult(outcome); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.paymentResponse(outcome))
}

func (h *Handler) paymentResponse(outcome onboarding.Outcome) PaymentResponse {
	gate := h.session.Gate()
	return PaymentResponse{Outcome: outcome, State: gate.State(), PaymentPhase: gate.PaymentPhase()}
}
