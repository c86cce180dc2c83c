package enum

// ── Order status labels (no DB constraint, transitions are unrestricted) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// StatusFilterAll disables status filtering on order listings.
const StatusFilterAll = "all"

// ── Payment ──

const (
	PaymentMethodBkash = "bkash"
	PaymentMethodCash  = "cash"
)

const (
	LocationSchool = "School"
	LocationMosque = "Mosque"
	LocationOther  = "Other"
)

// ── Jersey options (configurable labels) ──

const (
	JerseyColorBlue  = "Blue"
	JerseyColorGreen = "Green"
)

var JerseySizes = []string{"S", "M", "L", "XL", "XXL"}

// ── Gallery ──

const (
	ImageTypeJersey = "jersey"
	ImageTypeFabric = "fabric"
)
