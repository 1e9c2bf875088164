package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/view"
)

type contactService interface {
	Submit(ctx context.Context, form *application.ContactForm) error
}

type ContactHandler struct {
	service   contactService
	responder responder
	logger    *slog.Logger
}

func NewContactHandler(service contactService, renderer pageRenderer, logger *slog.Logger) *ContactHandler {
	base := defaultLogger(logger)
	return &ContactHandler{service: service, responder: newResponder(base, renderer), logger: base}
}

func (h *ContactHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ContactHandler", operation, attrs...)
}

func (h *ContactHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, application.NewContactForm(currentUser(r.Context())))
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	form := application.NewContactForm(nil)
	if err := r.ParseForm(); err != nil {
		h.log(ctx, "Submit", "error_kind", "bad_request").ErrorContext(ctx, "failed to parse contact form", "error", err)
		h.render(w, r, http.StatusBadRequest, form)
		return
	}
	form.Message = application.ContactMessage{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Message: r.PostForm.Get("message"),
	}

	err := h.service.Submit(ctx, form)
	var vErr *application.ValidationError
	switch {
	case err == nil:
		h.render(w, r, http.StatusOK, form)
	case errors.As(err, &vErr):
		h.render(w, r, http.StatusUnprocessableEntity, form)
	case errors.Is(err, application.ErrSubmissionCancelled):
		h.render(w, r, http.StatusServiceUnavailable, form)
	default:
		h.log(ctx, "Submit").ErrorContext(ctx, "contact submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.render(w, r, http.StatusInternalServerError, form)
	}
}

func (h *ContactHandler) render(w http.ResponseWriter, r *http.Request, status int, form *application.ContactForm) {
	h.responder.renderPage(r.Context(), w, r, status, view.PageContact, view.Page{
		Title: "Contact",
		Path:  "/contact",
		Data:  view.ContactData{Form: form},
	})
}
