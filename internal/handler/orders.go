package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/export"
	"github.com/jersey-sale/api/internal/service"
	"github.com/jersey-sale/api/internal/ws"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (database.JerseyOrder, error)
	ListOrders(ctx context.Context, status string) ([]database.JerseyOrder, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, u service.OrderUpdate) (database.JerseyOrder, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc    OrderServicer
	events EventBroadcaster
	log    *zap.Logger
	now    func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, events EventBroadcaster, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, events: events, log: log, now: time.Now}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /api/orders. Submission is public (rate limited),
// everything else goes through requireAdmin.
func (h *OrderHandler) RegisterRoutes(r chi.Router, requireAdmin, limit Middleware) {
	r.With(limit).Post("/", h.Create)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.List)
		r.Get("/export", h.Export)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// --- Request / Response types ---

type createOrderRequest struct {
	Name           string `json:"name"`
	JerseyName     string `json:"jerseyName"`
	Class          string `json:"class"`
	Section        string `json:"section"`
	MobileNumber   string `json:"mobileNumber"`
	Size           string `json:"size"`
	JerseyColor    string `json:"jerseyColor"`
	PaymentMethod  string `json:"paymentMethod"`
	TrxID          string `json:"trxId"`
	PaymentNumber  string `json:"paymentNumber"`
	Location       string `json:"location"`
	CustomLocation string `json:"customLocation"`
}

// updateOrderRequest accepts amounts as JSON numbers or numeric strings.
type updateOrderRequest struct {
	Status     *string          `json:"status"`
	AmountPaid *decimal.Decimal `json:"amountPaid"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
}

type createOrderResponse struct {
	Message string    `json:"message"`
	OrderID uuid.UUID `json:"orderId"`
	Status  string    `json:"status"`
}

type orderResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	JerseyName     *string   `json:"jerseyName"`
	Class          string    `json:"class"`
	Section        string    `json:"section"`
	MobileNumber   string    `json:"mobileNumber"`
	Size           *string   `json:"size"`
	JerseyColor    *string   `json:"jerseyColor"`
	PaymentMethod  string    `json:"paymentMethod"`
	TrxID          *string   `json:"trxId"`
	PaymentNumber  *string   `json:"paymentNumber"`
	Location       *string   `json:"location"`
	CustomLocation *string   `json:"customLocation"`
	AmountPaid     *string   `json:"amountPaid"`
	TotalPrice     *string   `json:"totalPrice"`
	RemainingPrice *string   `json:"remainingPrice"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// --- Handlers ---

// Create handles POST /api/orders. Any status in the body is ignored.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		Name:           req.Name,
		JerseyName:     req.JerseyName,
		Class:          req.Class,
		Section:        req.Section,
		MobileNumber:   req.MobileNumber,
		Size:           req.Size,
		JerseyColor:    req.JerseyColor,
		PaymentMethod:  req.PaymentMethod,
		TrxID:          req.TrxID,
		PaymentNumber:  req.PaymentNumber,
		Location:       req.Location,
		CustomLocation: req.CustomLocation,
	})
	if err != nil {
		writeServiceError(w, h.log, "create order", err)
		return
	}

	broadcast(h.events, h.log, ws.EventOrderCreated, toOrderResponse(order))
	writeJSON(w, http.StatusCreated, createOrderResponse{
		Message: "Order created successfully",
		OrderID: order.ID,
		Status:  order.Status,
	})
}

// List handles GET /api/orders?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.log, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export handles GET /api/orders/export?format=csv|xlsx&status=.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatXLSX {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: export.ErrUnknownFormat.Error(), Code: "InvalidExportFormat", Field: "format"})
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, h.log, "export orders", err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, orders); err != nil {
		h.log.Error("render export", zap.String("format", format), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
		return
	}

	filename := fmt.Sprintf("orders-%s.%s", h.now().Format("20060102"), format)
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Update handles PATCH /api/orders/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	order, err := h.svc.UpdateOrder(r.Context(), id, service.OrderUpdate{
		Status:     req.Status,
		AmountPaid: req.AmountPaid,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		writeServiceError(w, h.log, "update order", err)
		return
	}

	resp := toOrderResponse(order)
	broadcast(h.events, h.log, ws.EventOrderUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, h.log, "delete order", err)
		return
	}

	broadcast(h.events, h.log, ws.EventOrderDeleted, map[string]string{"id": id.String()})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}

// --- Helpers ---

// parseOrderID treats a malformed id like an unknown one.
func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: service.ErrOrderNotFound.Error(), Code: service.ErrorCode(service.ErrOrderNotFound)})
		return uuid.Nil, false
	}
	return id, true
}

func toOrderResponse(o database.JerseyOrder) orderResponse {
	return orderResponse{
		ID:             o.ID,
		Name:           o.Name,
		JerseyName:     textPtr(o.JerseyName),
		Class:          o.Class,
		Section:        o.Section,
		MobileNumber:   o.MobileNumber,
		Size:           textPtr(o.Size),
		JerseyColor:    textPtr(o.JerseyColor),
		PaymentMethod:  o.PaymentMethod,
		TrxID:          textPtr(o.TrxID),
		PaymentNumber:  textPtr(o.PaymentNumber),
		Location:       textPtr(o.Location),
		CustomLocation: textPtr(o.CustomLocation),
		AmountPaid:     moneyPtr(o.AmountPaid),
		TotalPrice:     moneyPtr(o.TotalPrice),
		RemainingPrice: moneyPtr(o.RemainingPrice),
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func moneyPtr(n pgtype.Numeric) *string {
	s, ok := service.FormatMoney(n)
	if !ok {
		return nil
	}
	return &s
}
