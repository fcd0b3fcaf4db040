// Package testhelper holds fixtures shared by package tests.
package testhelper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// init disables logging for tests unless VIVRISK_TEST_LOG is set
func init() {
	if testing.Testing() && os.Getenv("VIVRISK_TEST_LOG") == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
}

// SampleCSV is a small survey of bridges with the full column set, one
// duplicated row and a few gaps
const SampleCSV = `结构形式,自证措施,宽高比,跨度_m,长度_m,自振频率_Hz,一阶频率_Hz,二阶频率_Hz,涡振风速_m_s,振幅_cm,阻力比,措施后振幅_cm,涡振发生,风险等级
钢箱梁,无,8.5,300,1200,0.35,0.35,0.70,12.5,15.2,0.005,3.1,是,高
钢箱梁,导流板,9.1,250,1000,0.42,0.42,0.88,14.0,6.8,0.006,1.2,是,中
混凝土箱梁,无,6.2,120,600,0.95,0.95,2.10,22.0,0.6,0.012,0.6,否,低
混凝土箱梁,无,6.2,120,600,0.95,0.95,2.10,22.0,0.6,0.012,0.6,否,低
叠合梁,TMD,,180,900,0.60,0.60,1.35,,4.5,0.008,1.0,是,中
钢箱梁,,7.8,400,1600,abc,0.28,0.61,10.5,22.4,0.004,5.5,,高
`

// WriteFile writes content to name inside a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// CSV joins a header and rows into CSV text
func CSV(header string, rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n") + "\n"
}
