package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/enum"
)

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries.
type OrderStore interface {
	CreateJerseyOrder(ctx context.Context, arg database.CreateJerseyOrderParams) (database.JerseyOrder, error)
	GetJerseyOrder(ctx context.Context, id uuid.UUID) (database.JerseyOrder, error)
	ListJerseyOrders(ctx context.Context, status pgtype.Text) ([]database.JerseyOrder, error)
	UpdateJerseyOrder(ctx context.Context, arg database.UpdateJerseyOrderParams) (database.JerseyOrder, error)
	DeleteJerseyOrder(ctx context.Context, id uuid.UUID) (int64, error)
}

// CreateOrderRequest is a buyer's submission. It has no status field:
// new orders always start as pending.
type CreateOrderRequest struct {
	Name           string
	JerseyName     string
	Class          string
	Section        string
	MobileNumber   string
	Size           string
	JerseyColor    string
	PaymentMethod  string
	TrxID          string
	PaymentNumber  string
	Location       string
	CustomLocation string
}

// OrderService handles order business logic.
type OrderService struct {
	store OrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{store: store}
}

// ValidateOrder applies the submission rules in order and returns the first
// violation as a *FieldError. The mobile number format is not checked here.
func ValidateOrder(req CreateOrderRequest) error {
	required := []struct {
		field string
		value string
	}{
		{"name", req.Name},
		{"class", req.Class},
		{"section", req.Section},
		{"mobileNumber", req.MobileNumber},
	}
	for _, r := range required {
		if blank(r.value) {
			return fieldError(r.field, ErrMissingRequiredField)
		}
	}

	switch strings.TrimSpace(req.PaymentMethod) {
	case "":
		return fieldError("paymentMethod", ErrMissingPaymentMethod)
	case enum.PaymentMethodBkash:
		if blank(req.TrxID) {
			return fieldError("trxId", ErrMissingBkashDetails)
		}
		if blank(req.PaymentNumber) {
			return fieldError("paymentNumber", ErrMissingBkashDetails)
		}
	case enum.PaymentMethodCash:
		if blank(req.Location) {
			return fieldError("location", ErrMissingLocation)
		}
		if strings.TrimSpace(req.Location) == enum.LocationOther && blank(req.CustomLocation) {
			return fieldError("customLocation", ErrMissingCustomLocation)
		}
	default:
		return fieldError("paymentMethod", ErrInvalidPaymentMethod)
	}
	return nil
}

// CreateOrder validates and persists a submission with status pending.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.JerseyOrder, error) {
	if err := ValidateOrder(req); err != nil {
		return database.JerseyOrder{}, err
	}

	order, err := s.store.CreateJerseyOrder(ctx, database.CreateJerseyOrderParams{
		Name:           strings.TrimSpace(req.Name),
		JerseyName:     optionalText(req.JerseyName),
		Class:          strings.TrimSpace(req.Class),
		Section:        strings.TrimSpace(req.Section),
		MobileNumber:   strings.TrimSpace(req.MobileNumber),
		Size:           optionalText(req.Size),
		JerseyColor:    optionalText(req.JerseyColor),
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		TrxID:          optionalText(req.TrxID),
		PaymentNumber:  optionalText(req.PaymentNumber),
		Location:       optionalText(req.Location),
		CustomLocation: optionalText(req.CustomLocation),
		Status:         enum.OrderStatusPending,
	})
	if err != nil {
		return database.JerseyOrder{}, storageError("create order", err)
	}
	return order, nil
}

// ListOrders returns orders newest first. An empty status or "all" disables filtering.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]database.JerseyOrder, error) {
	filter := pgtype.Text{}
	if status != "" && status != enum.StatusFilterAll {
		filter = pgtype.Text{String: status, Valid: true}
	}
	orders, err := s.store.ListJerseyOrders(ctx, filter)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	return orders, nil
}

// UpdateOrder applies a partial status/financial update and returns the stored result.
// When only one money field is supplied the other is read from the current row first;
// the read and the write are separate statements (last write wins).
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, u OrderUpdate) (database.JerseyOrder, error) {
	u, err := u.normalized()
	if err != nil {
		return database.JerseyOrder{}, err
	}
	if u.IsEmpty() {
		return database.JerseyOrder{}, ErrNoFieldsProvided
	}

	var current *database.JerseyOrder
	if u.needsStoredAmounts() {
		o, err := s.store.GetJerseyOrder(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.JerseyOrder{}, ErrOrderNotFound
			}
			return database.JerseyOrder{}, storageError("get order for update", err)
		}
		current = &o
	}

	updated, err := s.store.UpdateJerseyOrder(ctx, Reconcile(u, current).params(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.JerseyOrder{}, ErrOrderNotFound
		}
		return database.JerseyOrder{}, storageError("update order", err)
	}
	return updated, nil
}

// DeleteOrder removes an order. Deleting an unknown id is an error, not a no-op.
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.DeleteJerseyOrder(ctx, id)
	if err != nil {
		return storageError("delete order", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// --- Helpers ---

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}
