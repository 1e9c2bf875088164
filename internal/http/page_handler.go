package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/view"
)

// PageHandler serves the read-only pages built from the catalog.
type PageHandler struct {
	catalog   *catalog.Catalog
	responder responder
	logger    *slog.Logger
}

func NewPageHandler(c *catalog.Catalog, renderer pageRenderer, logger *slog.Logger) *PageHandler {
	base := defaultLogger(logger)
	return &PageHandler{catalog: c, responder: newResponder(base, renderer), logger: base}
}

func (h *PageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PageHandler", operation, attrs...)
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.renderPage(r.Context(), w, r, http.StatusOK, view.PageHome, view.Page{
		Title: "Accueil",
		Data: view.HomeData{
			Models:       h.catalog.Models,
			Pricing:      h.catalog.Pricing,
			Testimonials: h.catalog.Testimonials,
		},
	})
}

func (h *PageHandler) Map(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.responder.renderPage(r.Context(), w, r, http.StatusOK, view.PageMap, view.Page{
		Title: "Carte",
		Data:  view.MapData{Store: h.catalog.MainStore(), Stores: h.catalog.Stores},
	})
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.log(r.Context(), "NotFound").InfoContext(r.Context(), "unknown route")
	h.responder.notFound(w, r)
}
