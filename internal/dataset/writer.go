package dataset

import (
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Save writes the table to path in the format given by its extension,
// creating parent directories as needed
func Save(t *Table, path string) error {
	ext, err := formatOf(path)
	if err != nil {
		return err
	}

	// Create directory if needed
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &LoadError{Path: path, Err: err}
		}
	}

	switch ext {
	case FormatCSV:
		err = writeCSV(t, path)
	case FormatExcel:
		err = writeExcel(t, path)
	}
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	return nil
}

func writeCSV(t *Table, path string) error {
	df := dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df.Err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeExcel stores number columns as numeric cells and text columns as strings.
// Missing cells are left empty.
func writeExcel(t *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(t.columns))
	for j, col := range t.columns {
		header[j] = col.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < t.rows; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(t.columns))
		for j, col := range t.columns {
			switch {
			case col.IsMissing(i):
				row[j] = nil
			case col.Kind == KindNumber:
				row[j] = col.Number[i]
			default:
				row[j] = col.Text[i]
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
