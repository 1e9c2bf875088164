package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/view"
)

var (
	errBadRequestBody  = errors.New("Requête invalide.")
	errInvalidPosition = errors.New("Position invalide.")
	errNoClient        = errors.New("Client non identifié.")
)

type pageRenderer interface {
	Render(w io.Writer, name string, page view.Page) error
}

type responder struct {
	logger   *slog.Logger
	renderer pageRenderer
}

func newResponder(logger *slog.Logger, renderer pageRenderer) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger, renderer: renderer}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   localizedStatusMessage(http.StatusUnprocessableEntity),
			Errors:    vErr.FieldErrors,
		})
	case errors.Is(err, application.ErrSubmissionCancelled):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "SUBMISSION_CANCELLED",
			Message:   localizedStatusMessage(http.StatusServiceUnavailable),
		})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err, "error_kind", application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: localizedStatusMessage(http.StatusInternalServerError)})
	}
}

// renderPage writes an HTML page. The signed-in user is filled in from the
// request context so every page shows the same header.
func (r responder) renderPage(ctx context.Context, w http.ResponseWriter, req *http.Request, status int, name string, page view.Page) {
	if r.renderer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if page.Path == "" && req != nil {
		page.Path = req.URL.Path
	}
	if page.User == nil {
		page.User = currentUser(ctx)
	}

	var buf strings.Builder
	if err := r.renderer.Render(&buf, name, page); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to render page", "page", name, "error", err)
		http.Error(w, localizedStatusMessage(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, buf.String()); err != nil {
		r.loggerFor(ctx).WarnContext(ctx, "failed to write page", "page", name, "error", err)
	}
}

func (r responder) notFound(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	r.renderPage(ctx, w, req, http.StatusNotFound, view.PageNotFound, view.Page{
		Title: "Page introuvable",
		Data:  view.NotFoundData{Path: req.URL.Path},
	})
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La requête est invalide."
	case http.StatusUnauthorized:
		return "Email ou mot de passe invalide"
	case http.StatusNotFound:
		return "La ressource demandée est introuvable."
	case http.StatusMethodNotAllowed:
		return "Méthode non autorisée."
	case http.StatusUnprocessableEntity:
		return "Le formulaire contient des erreurs."
	case http.StatusServiceUnavailable:
		return "La demande a été interrompue. Veuillez réessayer."
	default:
		return "Une erreur s'est produite"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
