package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/view"
)

type bookingService interface {
	Submit(ctx context.Context, form *application.BookingForm) error
	MinRentalDate() string
}

// RentHandler serves the rental request form.
type RentHandler struct {
	service   bookingService
	catalog   *catalog.Catalog
	responder responder
	logger    *slog.Logger
}

func NewRentHandler(service bookingService, c *catalog.Catalog, renderer pageRenderer, logger *slog.Logger) *RentHandler {
	base := defaultLogger(logger)
	return &RentHandler{service: service, catalog: c, responder: newResponder(base, renderer), logger: base}
}

func (h *RentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RentHandler", operation, attrs...)
}

func (h *RentHandler) Page(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, application.NewBookingForm(currentUser(r.Context())))
}

func (h *RentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	form := application.NewBookingForm(nil)
	if err := r.ParseForm(); err != nil {
		h.log(ctx, "Submit", "error_kind", "bad_request").ErrorContext(ctx, "failed to parse booking form", "error", err)
		h.render(w, r, http.StatusBadRequest, form)
		return
	}
	form.Draft = bookingDraftFromForm(r)
	logger := h.log(ctx, "Submit", "scooter_id", form.Draft.ScooterID)

	err := h.service.Submit(ctx, form)
	var vErr *application.ValidationError
	switch {
	case err == nil:
		logger.InfoContext(ctx, "booking submitted", "order_id", form.Confirmation.OrderID)
		h.render(w, r, http.StatusOK, form)
	case errors.As(err, &vErr):
		logger.InfoContext(ctx, "booking rejected", "fields", len(vErr.FieldErrors))
		h.render(w, r, http.StatusUnprocessableEntity, form)
	case errors.Is(err, application.ErrSubmissionCancelled):
		logger.WarnContext(ctx, "booking abandoned", "error", err)
		h.render(w, r, http.StatusServiceUnavailable, form)
	default:
		logger.ErrorContext(ctx, "booking failed", "error", err, "error_kind", application.ErrorKind(err))
		h.render(w, r, http.StatusInternalServerError, form)
	}
}

func (h *RentHandler) render(w http.ResponseWriter, r *http.Request, status int, form *application.BookingForm) {
	h.responder.renderPage(r.Context(), w, r, status, view.PageRent, view.Page{
		Title: "Location",
		Path:  "/rent",
		Data: view.RentData{
			Form:     form,
			Scooters: h.catalog.Scooters,
			Stores:   h.catalog.Stores,
			Pricing:  h.catalog.Pricing,
			MinDate:  h.service.MinRentalDate(),
		},
	})
}

func bookingDraftFromForm(r *http.Request) application.BookingDraft {
	form := r.PostForm
	delivery := form.Get("isDelivery")
	return application.BookingDraft{
		FullName:        form.Get("fullName"),
		Age:             form.Get("age"),
		ScooterID:       form.Get("scooterId"),
		RentalDate:      form.Get("rentalDate"),
		RentalTime:      form.Get("rentalTime"),
		ReturnDate:      form.Get("returnDate"),
		ReturnTime:      form.Get("returnTime"),
		Location:        form.Get("location"),
		IsDelivery:      delivery == "true" || delivery == "on",
		DeliveryAddress: form.Get("deliveryAddress"),
	}
}
