package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jersey-sale/api/internal/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory OrderStore ---

// memOrderStore mimics the SQL semantics of database.Queries for orders.
type memOrderStore struct {
	orders []database.JerseyOrder
	clock  time.Time

	getCalls  int
	createErr error
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{clock: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (m *memOrderStore) CreateJerseyOrder(ctx context.Context, arg database.CreateJerseyOrderParams) (database.JerseyOrder, error) {
	if m.createErr != nil {
		return database.JerseyOrder{}, m.createErr
	}
	m.clock = m.clock.Add(time.Minute)
	o := database.JerseyOrder{
		ID:             uuid.New(),
		Name:           arg.Name,
		JerseyName:     arg.JerseyName,
		Class:          arg.Class,
		Section:        arg.Section,
		MobileNumber:   arg.MobileNumber,
		Size:           arg.Size,
		JerseyColor:    arg.JerseyColor,
		PaymentMethod:  arg.PaymentMethod,
		TrxID:          arg.TrxID,
		PaymentNumber:  arg.PaymentNumber,
		Location:       arg.Location,
		CustomLocation: arg.CustomLocation,
		Status:         arg.Status,
		CreatedAt:      m.clock,
		UpdatedAt:      m.clock,
	}
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *memOrderStore) GetJerseyOrder(ctx context.Context, id uuid.UUID) (database.JerseyOrder, error) {
	m.getCalls++
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return database.JerseyOrder{}, pgx.ErrNoRows
}

func (m *memOrderStore) ListJerseyOrders(ctx context.Context, status pgtype.Text) ([]database.JerseyOrder, error) {
	out := []database.JerseyOrder{}
	for _, o := range m.orders {
		if !status.Valid || o.Status == status.String {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memOrderStore) UpdateJerseyOrder(ctx context.Context, arg database.UpdateJerseyOrderParams) (database.JerseyOrder, error) {
	for i := range m.orders {
		o := &m.orders[i]
		if o.ID != arg.ID {
			continue
		}
		if arg.Status.Valid {
			o.Status = arg.Status.String
		}
		if arg.AmountPaid.Valid {
			o.AmountPaid = arg.AmountPaid
		}
		if arg.TotalPrice.Valid {
			o.TotalPrice = arg.TotalPrice
		}
		if arg.RemainingPrice.Valid {
			o.RemainingPrice = arg.RemainingPrice
		}
		return *o, nil
	}
	return database.JerseyOrder{}, pgx.ErrNoRows
}

func (m *memOrderStore) DeleteJerseyOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	for i, o := range m.orders {
		if o.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// --- Test helpers ---

func validBkashRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Name:          "Ahnaf",
		JerseyName:    "AHNAF 10",
		Class:         "9",
		Section:       "B",
		MobileNumber:  "01712345678",
		Size:          "M",
		JerseyColor:   "Blue",
		PaymentMethod: "bkash",
		TrxID:         "9A7B6C5D",
		PaymentNumber: "01812345678",
	}
}

func validCashRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Name:          "Shahin",
		Class:         "8",
		Section:       "A",
		MobileNumber:  "01912345678",
		PaymentMethod: "cash",
		Location:      "School",
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func assertNumeric(t *testing.T, n pgtype.Numeric, want string) {
	t.Helper()
	require.True(t, n.Valid, "numeric should be set, want %s", want)
	got := numericToDecimal(n)
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "got %s, want %s", got, want)
}

// --- Validation & creation ---

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *CreateOrderRequest)
		wantErr   error
		wantField string
	}{
		{"valid bkash", func(r *CreateOrderRequest) {}, nil, ""},
		{"missing name", func(r *CreateOrderRequest) { r.Name = "" }, ErrMissingRequiredField, "name"},
		{"blank name", func(r *CreateOrderRequest) { r.Name = "   " }, ErrMissingRequiredField, "name"},
		{"missing class", func(r *CreateOrderRequest) { r.Class = "" }, ErrMissingRequiredField, "class"},
		{"missing section", func(r *CreateOrderRequest) { r.Section = "" }, ErrMissingRequiredField, "section"},
		{"missing mobile", func(r *CreateOrderRequest) { r.MobileNumber = "" }, ErrMissingRequiredField, "mobileNumber"},
		{"required fields checked before payment", func(r *CreateOrderRequest) { r.Name = ""; r.PaymentMethod = "" }, ErrMissingRequiredField, "name"},
		{"missing payment method", func(r *CreateOrderRequest) { r.PaymentMethod = "" }, ErrMissingPaymentMethod, "paymentMethod"},
		{"unknown payment method", func(r *CreateOrderRequest) { r.PaymentMethod = "card" }, ErrInvalidPaymentMethod, "paymentMethod"},
		{"bkash missing trx id", func(r *CreateOrderRequest) { r.TrxID = "" }, ErrMissingBkashDetails, "trxId"},
		{"bkash missing payment number", func(r *CreateOrderRequest) { r.PaymentNumber = "" }, ErrMissingBkashDetails, "paymentNumber"},
		{"mobile format not checked", func(r *CreateOrderRequest) { r.MobileNumber = "not-a-number" }, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBkashRequest()
			tt.mutate(&req)
			err := ValidateOrder(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantField, fe.Field)
		})
	}
}

func TestValidateOrder_Cash(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateOrderRequest)
		wantErr error
	}{
		{"school", func(r *CreateOrderRequest) {}, nil},
		{"missing location", func(r *CreateOrderRequest) { r.Location = "" }, ErrMissingLocation},
		{"other without custom", func(r *CreateOrderRequest) { r.Location = "Other" }, ErrMissingCustomLocation},
		{"other with blank custom", func(r *CreateOrderRequest) { r.Location = "Other"; r.CustomLocation = " " }, ErrMissingCustomLocation},
		{"other with custom", func(r *CreateOrderRequest) { r.Location = "Other"; r.CustomLocation = "Library" }, nil},
		{"cash needs no bkash details", func(r *CreateOrderRequest) { r.TrxID = ""; r.PaymentNumber = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCashRequest()
			tt.mutate(&req)
			err := ValidateOrder(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateOrder_MissingRequiredFieldPersistsNothing(t *testing.T) {
	for _, field := range []string{"name", "class", "section", "mobileNumber"} {
		t.Run(field, func(t *testing.T) {
			store := newMemOrderStore()
			svc := NewOrderService(store)

			req := validBkashRequest()
			switch field {
			case "name":
				req.Name = ""
			case "class":
				req.Class = ""
			case "section":
				req.Section = ""
			case "mobileNumber":
				req.MobileNumber = ""
			}

			_, err := svc.CreateOrder(context.Background(), req)
			assert.ErrorIs(t, err, ErrMissingRequiredField)
			assert.Empty(t, store.orders)
		})
	}
}

func TestCreateOrder_PersistsPending(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)

	order, err := svc.CreateOrder(context.Background(), validBkashRequest())
	require.NoError(t, err)

	assert.Equal(t, "pending", order.Status)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, "Ahnaf", order.Name)
	assert.Equal(t, pgtype.Text{String: "AHNAF 10", Valid: true}, order.JerseyName)
	assert.Equal(t, pgtype.Text{String: "9A7B6C5D", Valid: true}, order.TrxID)
	assert.False(t, order.Location.Valid)
	assert.False(t, order.AmountPaid.Valid)
	assert.False(t, order.RemainingPrice.Valid)
	require.Len(t, store.orders, 1)
}

func TestCreateOrder_NoDeduplication(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)

	for i := 0; i < 2; i++ {
		_, err := svc.CreateOrder(context.Background(), validCashRequest())
		require.NoError(t, err)
	}
	assert.Len(t, store.orders, 2)
}

func TestCreateOrder_StorageFailure(t *testing.T) {
	store := newMemOrderStore()
	cause := errors.New("connection reset")
	store.createErr = cause
	svc := NewOrderService(store)

	_, err := svc.CreateOrder(context.Background(), validCashRequest())
	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsValidationError(err))
}

// --- Reconciliation ---

func TestReconcile_BothAmounts(t *testing.T) {
	cases := []struct{ paid, total, want string }{
		{"100", "300", "200"},
		{"300", "300", "0"},
		{"500", "300", "-200"},
		{"0", "0", "0"},
		{"-50", "100", "150"},
		{"99.50", "300.25", "200.75"},
	}
	for _, c := range cases {
		stored := &database.JerseyOrder{AmountPaid: decimalToNumeric(decimal.NewFromInt(1)), TotalPrice: decimalToNumeric(decimal.NewFromInt(1))}
		for _, current := range []*database.JerseyOrder{nil, stored} {
			r := Reconcile(OrderUpdate{AmountPaid: dec(c.paid), TotalPrice: dec(c.total)}, current)
			require.NotNil(t, r.RemainingPrice)
			assert.True(t, r.RemainingPrice.Equal(decimal.RequireFromString(c.want)),
				"paid=%s total=%s: got %s, want %s", c.paid, c.total, r.RemainingPrice, c.want)
		}
	}
}

func TestReconcile_SingleAmountUsesStored(t *testing.T) {
	current := &database.JerseyOrder{
		AmountPaid: decimalToNumeric(decimal.NewFromInt(100)),
		TotalPrice: decimalToNumeric(decimal.NewFromInt(300)),
	}

	r := Reconcile(OrderUpdate{TotalPrice: dec("400")}, current)
	assert.True(t, r.RemainingPrice.Equal(decimal.NewFromInt(300)))
	assert.Nil(t, r.AmountPaid)

	r = Reconcile(OrderUpdate{AmountPaid: dec("150")}, current)
	assert.True(t, r.RemainingPrice.Equal(decimal.NewFromInt(150)))
	assert.Nil(t, r.TotalPrice)
}

func TestReconcile_UnsetStoredAmountsAreZero(t *testing.T) {
	current := &database.JerseyOrder{}

	r := Reconcile(OrderUpdate{TotalPrice: dec("300")}, current)
	assert.True(t, r.RemainingPrice.Equal(decimal.NewFromInt(300)))

	r = Reconcile(OrderUpdate{AmountPaid: dec("120")}, current)
	assert.True(t, r.RemainingPrice.Equal(decimal.NewFromInt(-120)))
}

func TestReconcile_StatusOnlyLeavesRemaining(t *testing.T) {
	r := Reconcile(OrderUpdate{Status: str("confirmed")}, nil)
	assert.Nil(t, r.RemainingPrice)
	assert.Nil(t, r.AmountPaid)
	assert.Nil(t, r.TotalPrice)
	assert.Equal(t, "confirmed", *r.Status)

	p := r.params(uuid.New())
	assert.False(t, p.RemainingPrice.Valid)
	assert.False(t, p.AmountPaid.Valid)
	assert.Equal(t, pgtype.Text{String: "confirmed", Valid: true}, p.Status)
}

// --- Update ---

func TestUpdateOrder_SingleFieldRoundTrip(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validBkashRequest())
	require.NoError(t, err)

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("100"), TotalPrice: dec("300")})
	require.NoError(t, err)
	assertNumeric(t, order.RemainingPrice, "200")

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{TotalPrice: dec("400")})
	require.NoError(t, err)
	assertNumeric(t, order.TotalPrice, "400")
	assertNumeric(t, order.AmountPaid, "100")
	assertNumeric(t, order.RemainingPrice, "300")

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("150")})
	require.NoError(t, err)
	assertNumeric(t, order.AmountPaid, "150")
	assertNumeric(t, order.RemainingPrice, "250")
}

func TestUpdateOrder_BothAmountsSkipRead(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("400"), TotalPrice: dec("300")})
	require.NoError(t, err)
	assertNumeric(t, order.RemainingPrice, "-100")
	assert.Equal(t, 0, store.getCalls)
}

func TestUpdateOrder_StatusOnly(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)
	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("300"), TotalPrice: dec("300")})
	require.NoError(t, err)

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{Status: str("delivered")})
	require.NoError(t, err)
	assert.Equal(t, "delivered", order.Status)
	assertNumeric(t, order.RemainingPrice, "0")
	assert.Equal(t, 0, store.getCalls)
}

func TestUpdateOrder_AnyTransitionAllowed(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)

	for _, status := range []string{"delivered", "pending", "cancelled", "confirmed", "pending"} {
		order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{Status: str(status)})
		require.NoError(t, err)
		assert.Equal(t, status, order.Status)
	}
}

func TestUpdateOrder_NoFields(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)

	_, err := svc.UpdateOrder(context.Background(), uuid.New(), OrderUpdate{})
	assert.ErrorIs(t, err, ErrNoFieldsProvided)

	_, err = svc.UpdateOrder(context.Background(), uuid.New(), OrderUpdate{Status: str("")})
	assert.ErrorIs(t, err, ErrNoFieldsProvided)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	updates := []OrderUpdate{
		{TotalPrice: dec("300")},
		{AmountPaid: dec("100"), TotalPrice: dec("300")},
		{Status: str("confirmed")},
	}
	for _, u := range updates {
		_, err := svc.UpdateOrder(ctx, uuid.New(), u)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	}
}

func TestUpdateOrder_RoundsAmountsBeforeReconciling(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("0.004"), TotalPrice: dec("0.006")})
	require.NoError(t, err)
	assertNumeric(t, order.AmountPaid, "0")
	assertNumeric(t, order.TotalPrice, "0.01")
	assertNumeric(t, order.RemainingPrice, "0.01")

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("0.005")})
	require.NoError(t, err)
	assertNumeric(t, order.AmountPaid, "0.01")
	assertNumeric(t, order.RemainingPrice, "0")

	order, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{TotalPrice: dec("120.456")})
	require.NoError(t, err)
	paid := numericToDecimal(order.AmountPaid)
	total := numericToDecimal(order.TotalPrice)
	remaining := numericToDecimal(order.RemainingPrice)
	assert.True(t, remaining.Equal(total.Sub(paid)), "remaining %s, total %s, paid %s", remaining, total, paid)
	assertNumeric(t, order.RemainingPrice, "120.45")
}

func TestUpdateOrder_AmountBounds(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)

	accepted := []string{"9999999999.99", "-9999999999.99", "0", "1e-300000"}
	for _, amount := range accepted {
		_, err := svc.UpdateOrder(ctx, order.ID, OrderUpdate{TotalPrice: dec(amount)})
		assert.NoError(t, err, "amount %s", amount)
	}

	rejected := []string{"10000000000", "-10000000000", "9999999999.995", "1e300000"}
	for _, amount := range rejected {
		_, err := svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec(amount)})
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %s", amount)
		assert.True(t, IsValidationError(err))
		assert.Equal(t, "InvalidAmount", ErrorCode(err))

		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "amountPaid", fe.Field)
	}

	_, err = svc.UpdateOrder(ctx, order.ID, OrderUpdate{AmountPaid: dec("1"), TotalPrice: dec("1e11")})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "totalPrice", fe.Field)

	stored, err := store.GetJerseyOrder(ctx, order.ID)
	require.NoError(t, err)
	assertNumeric(t, stored.TotalPrice, "0")
}

// --- Listing ---

func TestListOrders_NewestFirstAndFilter(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		o, err := svc.CreateOrder(ctx, validCashRequest())
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}
	_, err := svc.UpdateOrder(ctx, ids[1], OrderUpdate{Status: str("confirmed")})
	require.NoError(t, err)
	_, err = svc.UpdateOrder(ctx, ids[3], OrderUpdate{Status: str("confirmed")})
	require.NoError(t, err)

	for _, filter := range []string{"", "all"} {
		all, err := svc.ListOrders(ctx, filter)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []uuid.UUID{ids[3], ids[2], ids[1], ids[0]}, orderIDs(all))
	}

	confirmed, err := svc.ListOrders(ctx, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[3], ids[1]}, orderIDs(confirmed))

	delivered, err := svc.ListOrders(ctx, "delivered")
	require.NoError(t, err)
	assert.Empty(t, delivered)
}

func orderIDs(orders []database.JerseyOrder) []uuid.UUID {
	out := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

// --- Deletion ---

func TestDeleteOrder(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	assert.Empty(t, store.orders)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, order.ID), ErrOrderNotFound)
}

func TestDeleteOrder_UnknownLeavesStore(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, validCashRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, uuid.New()), ErrOrderNotFound)
	assert.Len(t, store.orders, 1)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "MissingBkashDetails", ErrorCode(fieldError("trxId", ErrMissingBkashDetails)))
	assert.Equal(t, "OrderNotFound", ErrorCode(ErrOrderNotFound))
	assert.Equal(t, "StorageFailure", ErrorCode(storageError("x", errors.New("boom"))))
}
