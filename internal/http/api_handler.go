package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/format"
	"github.com/example/easyride/internal/geo"
	"github.com/example/easyride/internal/persistence"
)

const maxJSONBodyBytes = 1 << 16

// HealthChecker reports whether the database answers and which schema it
// runs.
type HealthChecker interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (string, error)
}

type itemLister interface {
	ListItems(ctx context.Context, clientID string) ([]persistence.Item, error)
}

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	catalog   *catalog.Catalog
	items     itemLister
	health    HealthChecker
	responder responder
	logger    *slog.Logger
}

// NewAPIHandler wires the JSON endpoints. health may be nil when storage
// lives in process.
func NewAPIHandler(c *catalog.Catalog, items itemLister, health HealthChecker, logger *slog.Logger) *APIHandler {
	base := defaultLogger(logger)
	return &APIHandler{catalog: c, items: items, health: health, responder: newResponder(base, nil), logger: base}
}

func (h *APIHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "APIHandler", operation, attrs...)
}

func (h *APIHandler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ClientIDFromContext(ctx); !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errNoClient)
		return
	}
	user := currentUser(ctx)
	h.responder.writeJSON(ctx, w, http.StatusOK, sessionResponse{LoggedIn: user != nil, User: user})
}

// Storage lists the calling client's local storage entries.
func (h *APIHandler) Storage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.items == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	clientID, ok := ClientIDFromContext(ctx)
	if !ok {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errNoClient)
		return
	}

	items, err := h.items.ListItems(ctx, clientID)
	if err != nil {
		h.log(ctx, "Storage").ErrorContext(ctx, "failed to list storage items", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	resp := storageResponse{Items: make([]storageItemDTO, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, storageItemDTO{Key: item.Key, Value: item.Value, UpdatedAt: item.UpdatedAt})
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *APIHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	tiers := make([]pricingTierDTO, 0, len(h.catalog.Pricing))
	for _, tier := range h.catalog.Pricing {
		tiers = append(tiers, pricingTierDTO{PricingTier: tier, Label: format.FormatPrice(tier.Price)})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tiers)
}

// Distance measures the great-circle distance from the posted position to
// the main store.
func (h *APIHandler) Distance(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	ctx := r.Context()

	var req distanceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		h.log(ctx, "Distance", "error_kind", "bad_request").ErrorContext(ctx, "failed to decode distance request", "error", err)
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.Lat == nil || req.Lon == nil {
		h.responder.handleServiceError(ctx, w, &application.ValidationError{FieldErrors: missingCoordinates(req)})
		return
	}

	position := geo.Point{Lat: *req.Lat, Lon: *req.Lon}
	if err := position.Validate(); err != nil {
		h.log(ctx, "Distance", "error_kind", "validation").InfoContext(ctx, "rejected position", "error", err)
		h.responder.writeError(ctx, w, http.StatusUnprocessableEntity, errInvalidPosition)
		return
	}

	store := h.catalog.MainStore()
	km := geo.RoundKm(geo.Distance(position, store.Position))
	h.log(ctx, "Distance").DebugContext(ctx, "distance computed", "distance_km", km)
	h.responder.writeJSON(ctx, w, http.StatusOK, distanceResponse{
		DistanceKm: km,
		Label:      format.FormatKm(km),
		Store:      store,
	})
}

func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.health == nil {
		h.responder.writeJSON(ctx, w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	if err := h.health.Ping(ctx); err != nil {
		h.log(ctx, "Health").ErrorContext(ctx, "storage unavailable", "error", err)
		h.responder.writeJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	version, err := h.health.SchemaVersion(ctx)
	if err != nil {
		h.log(ctx, "Health").ErrorContext(ctx, "schema version unreadable", "error", err)
		h.responder.writeJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, healthResponse{Status: "ok", Schema: version})
}

func missingCoordinates(req distanceRequest) map[string]string {
	fields := make(map[string]string, 2)
	if req.Lat == nil {
		fields["lat"] = "La latitude est requise"
	}
	if req.Lon == nil {
		fields["lon"] = "La longitude est requise"
	}
	return fields
}

type sessionResponse struct {
	LoggedIn bool              `json:"logged_in"`
	User     *application.User `json:"user"`
}

type pricingTierDTO struct {
	catalog.PricingTier
	Label string `json:"label"`
}

type distanceRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type distanceResponse struct {
	DistanceKm float64       `json:"distance_km"`
	Label      string        `json:"label"`
	Store      catalog.Store `json:"store"`
}

type healthResponse struct {
	Status string `json:"status"`
	Schema string `json:"schema,omitempty"`
}

type storageResponse struct {
	Items []storageItemDTO `json:"items"`
}

type storageItemDTO struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
