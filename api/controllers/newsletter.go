package controllers

import (
	"net/http"
	"time"

	"github.com/oryclothing/ory-backend/api/responses"
	"github.com/oryclothing/ory-backend/api/validators"
	newslettersvc "github.com/oryclothing/ory-backend/internal/newsletter"
	"github.com/oryclothing/ory-backend/pkg/logger"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type subscriberResponse struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewsletterSubscribe opts an email address into the newsletter.
func NewsletterSubscribe(svc newslettersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Subscribe(r.Context(), payload.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"message": "Subscribed successfully"})
	}
}

// NewsletterList returns all subscribers, oldest first.
func NewsletterList(svc newslettersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.Subscribers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]subscriberResponse, len(subs))
		for i, sub := range subs {
			out[i] = subscriberResponse{Email: sub.Email, SubscribedAt: sub.SubscribedAt}
		}
		responses.WriteSuccess(w, out)
	}
}
