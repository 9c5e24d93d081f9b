package ports

import "context"

// SheetSource reads a spreadsheet referenced by URL or ID into a header
// row and raw data rows.
type SheetSource interface {
	Read(ctx context.Context, ref string) (header []string, rows [][]string, err error)
}
