package service

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
)

var csvHeader = []string{"ID", "Title", "Description", "Category", "Status", "Student", "Submitted On", "Updated On"}

// WriteCSV renders the record set as the admin export: comma-separated with
// double-quote escaping, one header row, GR-prefixed short ids, and dates as
// locale-style day strings ("-" when the timestamp is absent).
func WriteCSV(w io.Writer, records []model.Grievance) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, g := range records {
		row := []string{
			g.DisplayID(8),
			g.Title,
			g.Description,
			string(g.Category),
			string(g.Status),
			g.SubmitterEmail,
			formatDate(g.CreatedAt),
			formatDate(g.UpdatedAt),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("1/2/2006")
}
