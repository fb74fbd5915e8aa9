package controllers

import (
	"net/http"

	"github.com/angelmondragon/greengrocer-web/api/responses"
	"github.com/angelmondragon/greengrocer-web/api/validators"
	"github.com/angelmondragon/greengrocer-web/internal/auth"
	"github.com/angelmondragon/greengrocer-web/internal/cart"
	"github.com/angelmondragon/greengrocer-web/internal/chat"
	pkgerrors "github.com/angelmondragon/greengrocer-web/pkg/errors"
	"github.com/angelmondragon/greengrocer-web/pkg/logger"
)

type chatMessageRequest struct {
	Message string `json:"message"`
}

type chatCartRequest struct {
	Product chat.Product `json:"product"`
}

func chatUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable")
}

// ChatTranscript returns the stored conversation without calling the chatbot.
func ChatTranscript(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, chatUnavailable())
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		session := auth.FromContext(ctx)
		transcript, err := svc.Current(ctx, b, session != nil && session.IsAuthenticated())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, transcript)
	}
}

// ChatOpen starts or resumes the chat session when the widget opens.
func ChatOpen(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, chatUnavailable())
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		transcript, err := svc.EnsureSession(ctx, b, sessionUser(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, transcript)
	}
}

// ChatSend posts one message. Chatbot failures come back inside the
// transcript, so only local problems produce an error envelope.
func ChatSend(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, chatUnavailable())
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload chatMessageRequest
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		transcript, err := svc.SendMessage(ctx, b, sessionUser(r), payload.Message)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, transcript)
	}
}

func ChatReset(svc *chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, chatUnavailable())
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		transcript, err := svc.ResetSession(ctx, b, sessionUser(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, transcript)
	}
}

// ChatAddToCart adds an assistant product card to the cart.
func ChatAddToCart(svc *chat.Service, locker *cart.Locker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, chatUnavailable())
			return
		}
		b, err := requestBrowser(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload chatCartRequest
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		c, err := svc.AddToCart(ctx, cartStore(b, locker), payload.Product.ChatbotProduct)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(ctx, w, newCartResponse(c))
	}
}
