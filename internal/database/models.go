package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type JerseyOrder struct {
	ID             uuid.UUID
	Name           string
	JerseyName     pgtype.Text
	Class          string
	Section        string
	MobileNumber   string
	Size           pgtype.Text
	JerseyColor    pgtype.Text
	PaymentMethod  string
	TrxID          pgtype.Text
	PaymentNumber  pgtype.Text
	Location       pgtype.Text
	CustomLocation pgtype.Text
	AmountPaid     pgtype.Numeric
	TotalPrice     pgtype.Numeric
	RemainingPrice pgtype.Numeric
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type GalleryImage struct {
	ID         uuid.UUID
	Title      string
	ImageUrl   string
	ImageType  string
	StorageKey string
	SortOrder  int32
	CreatedAt  time.Time
}
