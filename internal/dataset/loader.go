package dataset

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Supported table formats
const (
	FormatCSV   = ".csv"
	FormatExcel = ".xlsx"
)

// formatOf returns the lower-cased extension of path when it is a supported format
func formatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case FormatCSV, FormatExcel:
		return ext, nil
	}
	return "", &UnsupportedFormatError{Path: path, Ext: ext}
}

// Load reads a CSV or Excel file into a text table and returns it with its row count
func Load(path string) (*Table, int, error) {
	ext, err := formatOf(path)
	if err != nil {
		return nil, 0, err
	}

	var records [][]string
	switch ext {
	case FormatCSV:
		records, err = readCSV(path)
	case FormatExcel:
		records, err = readExcel(path)
	}
	if err != nil {
		return nil, 0, &LoadError{Path: path, Err: err}
	}
	if len(records) == 0 {
		return nil, 0, &LoadError{Path: path, Err: errors.New("file has no header row")}
	}

	t := NewTable(records[0], records[1:])
	return t, t.Len(), nil
}

// readCSV parses a UTF-8 CSV file with a header row. Every column is read as text;
// numeric coercion is the cleaner's job. Rows shorter than the header are padded
// with missing cells, longer rows are cut to the header width.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	width := len(records[0])
	for i := 1; i < len(records); i++ {
		records[i] = fitRecord(records[i], width)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, df.Err
	}
	return df.Records(), nil
}

func fitRecord(rec []string, width int) []string {
	if len(rec) >= width {
		return rec[:width]
	}
	return append(rec, make([]string, width-len(rec))...)
}

// readExcel reads the stored (unformatted) cell values of the first worksheet
// of an .xlsx workbook
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}
