package tabular

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"datalens/internal/errors"
)

// Reader handles reading CSV and Excel files into a header plus raw rows
type Reader struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// SupportedExtension reports whether a filename has a readable extension
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	default:
		return false
	}
}

// NewReader creates a reader for the file, dispatching on extension
func NewReader(filePath string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into a header row and raw string rows
func (r *Reader) ReadData() ([]string, [][]string, error) {
	log.Printf("[Reader] Reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, nil, errors.NotFound("file " + r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, nil, errors.InvalidInput("unsupported file type: " + r.fileType)
	}
}

func (r *Reader) readCSV() ([]string, [][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, coercion pads them
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("malformed CSV file: %v", err))
	}
	if len(records) == 0 {
		return nil, nil, errors.InvalidInput("the data is empty")
	}

	return records[0], records[1:], nil
}

func (r *Reader) readExcel() ([]string, [][]string, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, nil, errors.InvalidInput("Excel file has no worksheets")
	}

	rows, err := f.GetRows(sheetList[0])
	if err != nil {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("failed to read worksheet %q: %v", sheetList[0], err))
	}
	if len(rows) == 0 {
		return nil, nil, errors.InvalidInput("the data is empty")
	}

	log.Printf("[Reader] Excel worksheet %q read in %.2fms", sheetList[0], float64(time.Since(start).Nanoseconds())/1e6)
	return rows[0], rows[1:], nil
}
