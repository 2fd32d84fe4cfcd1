// Package templates renders the HTML fragments returned to HTMX requests.
// The components live in .templ files; run `templ generate` after editing
// them.
package templates

import (
	"github.com/JonMunkholm/leadboard/internal/core"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
)

// maxFailedRows caps the failed-row list shown under a summary.
const maxFailedRows = 20

func summaryClass(result core.ImportResult) string {
	if result.Inserted == 0 {
		return "alert-warning"
	}
	return "alert-success"
}

func visibleFailedRows(rows []leadimport.FailedRow) []leadimport.FailedRow {
	if len(rows) > maxFailedRows {
		return rows[:maxFailedRows]
	}
	return rows
}

// previewCells returns the values of one row in PreviewTable column order.
func previewCells(row leadimport.CanonicalLeadRow) []string {
	return []string{
		row.FullName,
		row.Email,
		row.PhoneRaw,
		row.City,
		row.PostalCode,
		row.ProductName,
		string(row.Status),
	}
}
