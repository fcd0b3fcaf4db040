package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexiusacademia/vivrisk/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	path := testhelper.WriteFile(t, "bridges.csv", testhelper.SampleCSV)

	table, rows, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, rows)
	assert.Equal(t, 6, table.Len())
	assert.True(t, table.Has("跨度_m"))
	assert.True(t, table.Has("结构形式"))
	assert.False(t, table.Has("missing"))

	span := table.Column("跨度_m")
	require.NotNil(t, span)
	assert.Equal(t, KindText, span.Kind)
	assert.Equal(t, "300", span.Text[0])

	// Empty cells load as missing
	assert.True(t, table.Column("宽高比").IsMissing(4))
	assert.True(t, table.Column("自证措施").IsMissing(5))
	assert.Equal(t, 1, table.Column("涡振风速_m_s").MissingCount())
}

func TestLoadCSVRaggedRows(t *testing.T) {
	path := testhelper.WriteFile(t, "ragged.csv", testhelper.CSV("跨度_m,长度_m,振幅_cm", "10,100,1.5", "20,100", "30,150,2.5,extra"))

	table, rows, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, []string{"跨度_m", "长度_m", "振幅_cm"}, table.Names())
	assert.Equal(t, "20", table.Column("跨度_m").Text[1])
	assert.True(t, table.Column("振幅_cm").IsMissing(1))
	assert.Equal(t, "2.5", table.Column("振幅_cm").Text[2])
}

func TestLoadUnsupportedFormat(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{name: "json file", file: "bridges.json"},
		{name: "legacy excel", file: "bridges.xls"},
		{name: "no extension", file: "bridges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(filepath.Join(t.TempDir(), tt.file))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedFormat))

			var loadErr *LoadError
			assert.False(t, errors.As(err, &loadErr))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridges.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"跨度_m", "长度_m", "结构形式"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"10", "100", "钢箱梁"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"20", "100"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, rows, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, []string{"跨度_m", "长度_m", "结构形式"}, table.Names())
	assert.Equal(t, "钢箱梁", table.Column("结构形式").Text[0])
	assert.True(t, table.Column("结构形式").IsMissing(1))
}

func TestLoadExcelReadsStoredValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styled.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellStr(sheet, "A1", "宽高比"))
	require.NoError(t, f.SetCellFloat(sheet, "A2", 0.0123, -1, 64))
	require.NoError(t, f.SetCellFloat(sheet, "A3", 1234.5, -1, 64))

	twoDecimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	require.NoError(t, err)
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", twoDecimals))
	require.NoError(t, f.SetCellStyle(sheet, "A3", "A3", thousands))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, rows, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, []string{"0.0123", "1234.5"}, table.Column("宽高比").Text)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{FormatCSV, FormatExcel} {
		t.Run(ext, func(t *testing.T) {
			table := NewTable([]string{"a", "b"}, [][]string{{"1.5", "x"}, {"", "y"}})
			table.SetColumn(&Column{Name: "a", Kind: KindNumber, Number: []float64{1.5, 2}})

			path := filepath.Join(t.TempDir(), "nested", "out"+ext)
			require.NoError(t, Save(table, path))

			loaded, rows, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 2, rows)
			assert.Equal(t, table.Records(), loaded.Records())
		})
	}
}

func TestSaveExcelWritesNumericCells(t *testing.T) {
	table := NewTable([]string{"a", "b"}, [][]string{{"1.5", "x"}, {"", "y"}})
	table.SetColumn(&Column{Name: "a", Kind: KindNumber, Number: []float64{1.5, math.NaN()}})

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Save(table, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	// numeric cells carry no type attribute, strings do
	typ, err := f.GetCellType(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeUnset, typ)
	typ, err = f.GetCellType(sheet, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeUnset, typ)

	v, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Empty(t, v)

	loaded, _, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Column("a").IsMissing(1))
}

func TestSaveUnsupportedFormat(t *testing.T) {
	table := NewTable([]string{"a"}, [][]string{{"1"}})
	err := Save(table, filepath.Join(t.TempDir(), "out.txt"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestNewTable(t *testing.T) {
	table := NewTable(
		[]string{"\ufeffa", " b ", "a"},
		[][]string{{"1", "NA"}, {"NaN", " 2 ", "ignored", "extra"}},
	)

	assert.Equal(t, []string{"a", "b"}, table.Names())
	assert.Equal(t, "1", table.Column("a").Text[0])
	assert.True(t, table.Column("a").IsMissing(1))
	assert.True(t, table.Column("b").IsMissing(0))
	assert.Equal(t, "2", table.Column("b").Text[1])
}

func TestDropDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		records  [][]string
		expected [][]string
	}{
		{
			name:     "keeps unique rows",
			records:  [][]string{{"1", "x"}, {"2", "y"}},
			expected: [][]string{{"a", "b"}, {"1", "x"}, {"2", "y"}},
		},
		{
			name:     "drops later duplicates",
			records:  [][]string{{"1", "x"}, {"2", "y"}, {"1", "x"}},
			expected: [][]string{{"a", "b"}, {"1", "x"}, {"2", "y"}},
		},
		{
			name:     "missing cells compare equal",
			records:  [][]string{{"", "x"}, {"NA", "x"}},
			expected: [][]string{{"a", "b"}, {"", "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable([]string{"a", "b"}, tt.records)
			assert.Equal(t, tt.expected, table.DropDuplicates().Records())
		})
	}
}

func TestDropDuplicatesNumeric(t *testing.T) {
	table := NewTable([]string{"a"}, [][]string{{"1"}, {"1.0"}, {""}, {""}})
	table.SetColumn(&Column{Name: "a", Kind: KindNumber, Number: []float64{1, 1.0, math.NaN(), math.NaN()}})

	deduped := table.DropDuplicates()
	assert.Equal(t, 2, deduped.Len())
	assert.Equal(t, 4, table.Len())
}

func TestCloneIsDeep(t *testing.T) {
	table := NewTable([]string{"a"}, [][]string{{"x"}})
	cp := table.Clone()
	cp.Column("a").Text[0] = "y"
	assert.Equal(t, "x", table.Column("a").Text[0])
}
