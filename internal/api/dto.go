package api

import "dishuflix/internal/onboarding"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Onboarding DTOs

type InviteCodeRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type InviteCharRequest struct {
	Char string `json:"char" validate:"required,len=1"`
}

type InviteResponse struct {
	Result onboarding.InviteResult `json:"result,omitempty"`
	State  onboarding.State        `json:"state"`
	Invite []string                `json:"invite"`
	Signal *onboarding.Signal      `json:"signal,omitempty"`
}

type NameRequest struct {
	Name string `json:"name" validate:"notblank,max=64"`
}

type PaymentResultRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=success failure cancelled"`
}

type PaymentResponse struct {
	Outcome      onboarding.Outcome      `json:"outcome,omitempty"`
	State        onboarding.State        `json:"state"`
	PaymentPhase onboarding.PaymentPhase `json:"payment_phase"`
}

type OnboardingResponse struct {
	State onboarding.State `json:"state"`
	Name  string           `json:"name,omitempty"`
}

// Catalog DTOs

type ListResponse struct {
	ID     int  `json:"id"`
	InList bool `json:"in_list"`
}

type EpisodeRequest struct {
	Episode int `json:"episode" validate:"gte=1,lte=8"`
}

// Search DTOs

type QueryRequest struct {
	Query string `json:"query" validate:"max=200"`
}

// SubmitRequest plays either a typed query or a suggested title.
type SubmitRequest struct {
	Query        string `json:"query" validate:"required_without=SuggestionID,max=200"`
	SuggestionID int    `json:"suggestion_id" validate:"omitempty,gte=1"`
}
