package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/view"
)

// AuthHandler drives the sign-in, sign-up and sign-out forms against the
// client's SessionStore.
type AuthHandler struct {
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(renderer pageRenderer, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{responder: newResponder(base, renderer), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Page renders the sign-in form, or the sign-up form for ?mode=register.
// Signed-in clients are sent home.
func (h *AuthHandler) Page(w http.ResponseWriter, r *http.Request) {
	if currentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	mode := view.AuthLogin
	if r.URL.Query().Get("mode") == view.AuthRegister {
		mode = view.AuthRegister
	}
	h.render(w, r, http.StatusOK, view.AuthData{Mode: mode})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.log(ctx, "Login", "error_kind", "bad_request").ErrorContext(ctx, "failed to parse login form", "error", err)
		h.render(w, r, http.StatusBadRequest, view.AuthData{Mode: view.AuthLogin, Banner: application.MsgFillAllFields})
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	data := view.AuthData{Mode: view.AuthLogin, Email: email}
	logger := h.log(ctx, "Login", "email", strings.ToLower(email))

	if problem := application.LoginProblem(email, password); problem != "" {
		data.Banner = problem
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	store, ok := SessionFromContext(ctx)
	if !ok {
		logger.ErrorContext(ctx, "no session store for request")
		data.Banner = localizedStatusMessage(http.StatusInternalServerError)
		h.render(w, r, http.StatusInternalServerError, data)
		return
	}

	if !store.Login(ctx, email, password) {
		logger.InfoContext(ctx, "login rejected", "error_kind", application.ErrorKind(application.ErrInvalidCredentials))
		data.Banner = application.MsgInvalidCredentials
		h.render(w, r, http.StatusUnauthorized, data)
		return
	}

	logger.InfoContext(ctx, "client signed in")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.log(ctx, "Register", "error_kind", "bad_request").ErrorContext(ctx, "failed to parse register form", "error", err)
		h.render(w, r, http.StatusBadRequest, view.AuthData{Mode: view.AuthRegister, Banner: application.MsgFillAllFields})
		return
	}

	params := application.RegisterParams{
		Name:            r.PostForm.Get("name"),
		Email:           r.PostForm.Get("email"),
		Phone:           r.PostForm.Get("phone"),
		Age:             r.PostForm.Get("age"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirmPassword"),
	}
	data := view.AuthData{
		Mode:  view.AuthRegister,
		Name:  strings.TrimSpace(params.Name),
		Email: strings.TrimSpace(params.Email),
		Phone: strings.TrimSpace(params.Phone),
		Age:   strings.TrimSpace(params.Age),
	}
	logger := h.log(ctx, "Register", "email", strings.ToLower(data.Email))

	if problem := params.Problem(); problem != "" {
		data.Banner = problem
		h.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	store, ok := SessionFromContext(ctx)
	if !ok || !store.Register(ctx, params) {
		logger.ErrorContext(ctx, "registration failed", "session_loaded", ok)
		data.Banner = application.MsgRegistrationFailed
		h.render(w, r, http.StatusInternalServerError, data)
		return
	}

	logger.InfoContext(ctx, "client registered")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout always succeeds; signing out twice is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if store, ok := SessionFromContext(ctx); ok {
		store.Logout(ctx)
	}
	h.log(ctx, "Logout").InfoContext(ctx, "client signed out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, data view.AuthData) {
	title := "Connexion"
	if data.IsRegister() {
		title = "Inscription"
	}
	h.responder.renderPage(r.Context(), w, r, status, view.PageAuth, view.Page{Title: title, Path: "/auth", Data: data})
}
