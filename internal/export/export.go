// Package export renders order listings as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jersey-sale/api/internal/database"
	"github.com/jersey-sale/api/internal/enum"
	"github.com/jersey-sale/api/internal/service"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnknownFormat is returned for any format other than csv or xlsx.
var ErrUnknownFormat = errors.New("format must be csv or xlsx")

const sheetName = "Sheet1"

// Row is one exported order. Column order follows field order.
type Row struct {
	ID            string `csv:"ID"`
	CreatedAt     string `csv:"Created At"`
	Name          string `csv:"Name"`
	JerseyName    string `csv:"Jersey Name"`
	Class         string `csv:"Class"`
	Section       string `csv:"Section"`
	Mobile        string `csv:"Mobile"`
	Size          string `csv:"Size"`
	Color         string `csv:"Color"`
	PaymentMethod string `csv:"Payment Method"`
	TrxID         string `csv:"Trx ID"`
	PaymentNumber string `csv:"Payment Number"`
	Location      string `csv:"Location"`
	AmountPaid    string `csv:"Amount Paid"`
	TotalPrice    string `csv:"Total Price"`
	Remaining     string `csv:"Remaining"`
	Status        string `csv:"Status"`
}

var header = []string{
	"ID", "Created At", "Name", "Jersey Name", "Class", "Section", "Mobile", "Size", "Color",
	"Payment Method", "Trx ID", "Payment Number", "Location", "Amount Paid", "Total Price", "Remaining", "Status",
}

var columns = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q"}

// Rows converts orders to export rows, keeping their order.
func Rows(orders []database.JerseyOrder) []Row {
	rows := make([]Row, len(orders))
	for i, o := range orders {
		location := text(o.Location)
		if location == enum.LocationOther && o.CustomLocation.Valid {
			location = o.CustomLocation.String
		}
		rows[i] = Row{
			ID:            o.ID.String(),
			CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
			Name:          o.Name,
			JerseyName:    text(o.JerseyName),
			Class:         o.Class,
			Section:       o.Section,
			Mobile:        o.MobileNumber,
			Size:          text(o.Size),
			Color:         text(o.JerseyColor),
			PaymentMethod: o.PaymentMethod,
			TrxID:         text(o.TrxID),
			PaymentNumber: text(o.PaymentNumber),
			Location:      location,
			AmountPaid:    money(o.AmountPaid),
			TotalPrice:    money(o.TotalPrice),
			Remaining:     money(o.RemainingPrice),
			Status:        o.Status,
		}
	}
	return rows
}

func (r Row) values() []string {
	return []string{
		r.ID, r.CreatedAt, r.Name, r.JerseyName, r.Class, r.Section, r.Mobile, r.Size, r.Color,
		r.PaymentMethod, r.TrxID, r.PaymentNumber, r.Location, r.AmountPaid, r.TotalPrice, r.Remaining, r.Status,
	}
}

// WriteCSV writes a header row followed by one line per order.
func WriteCSV(w io.Writer, orders []database.JerseyOrder) error {
	// The header is written separately so an empty export still has one.
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	rows := Rows(orders)
	if len(rows) == 0 {
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, w)
}

// WriteXLSX writes a single-sheet workbook with a header row.
func WriteXLSX(w io.Writer, orders []database.JerseyOrder) error {
	f := excelize.NewFile()
	for i, h := range header {
		f.SetCellValue(sheetName, columns[i]+"1", h)
	}
	for r, row := range Rows(orders) {
		for c, v := range row.values() {
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", columns[c], r+2), v)
		}
	}
	return f.Write(w)
}

// Write dispatches on format.
func Write(w io.Writer, format string, orders []database.JerseyOrder) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, orders)
	case FormatXLSX:
		return WriteXLSX(w, orders)
	}
	return ErrUnknownFormat
}

// ContentType returns the MIME type for a supported format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func text(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func money(n pgtype.Numeric) string {
	s, _ := service.FormatMoney(n)
	return s
}
