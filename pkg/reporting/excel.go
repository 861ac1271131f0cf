package reporting

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/agts/pkg/types"
	"github.com/ducminhle1904/agts/pkg/validation"
)

// SummarySheet is the first sheet of every exported workbook
const SummarySheet = "Summary"

// maxSheetNameLen is Excel's sheet name limit
const maxSheetNameLen = 31

// ExcelStyles holds the style ids shared by all sheets of a workbook
type ExcelStyles struct {
	HeaderStyle  int
	PriceStyle   int
	VolumeStyle  int
	PercentStyle int
	BaseStyle    int
}

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteSeriesXLSX writes a summary sheet plus one sheet of bars per series
func (r *DefaultExcelReporter) WriteSeriesXLSX(series []*types.Series, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), SummarySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	used := map[string]bool{}
	var written []*types.Series
	var sheets []string
	for _, s := range series {
		if s == nil {
			continue
		}
		name := uniqueSheetName(SheetName(s), used)
		if _, err := fx.NewSheet(name); err != nil {
			return err
		}
		if err := r.writeBarsSheet(fx, name, s, styles); err != nil {
			return err
		}
		written = append(written, s)
		sheets = append(sheets, name)
	}

	if err := r.writeSummarySheet(fx, written, sheets, styles); err != nil {
		return err
	}

	fx.SetActiveSheet(0)
	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	// Header style - Dark slate gray background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: border,
	})
	if err != nil {
		return styles, err
	}

	styles.PriceStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.VolumeStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    3, // #,##0
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: border})
	return styles, err
}

func (r *DefaultExcelReporter) writeHeader(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := fx.SetCellStyle(sheet, "A1", last, styles.HeaderStyle); err != nil {
		return err
	}
	return fx.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func (r *DefaultExcelReporter) writeBarsSheet(fx *excelize.File, sheet string, s *types.Series, styles ExcelStyles) error {
	if err := r.writeHeader(fx, sheet, []string{"Timestamp", "Open", "High", "Low", "Close", "Volume"}, styles); err != nil {
		return err
	}

	fx.SetColWidth(sheet, "A", "A", 20)
	fx.SetColWidth(sheet, "B", "E", 14)
	fx.SetColWidth(sheet, "F", "F", 16)

	for i, bar := range s.Bars {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := fx.SetSheetRow(sheet, cell, &[]interface{}{
			bar.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		}); err != nil {
			return err
		}
	}

	if n := len(s.Bars); n > 0 {
		last := n + 1
		fx.SetCellStyle(sheet, "A2", fmt.Sprintf("A%d", last), styles.BaseStyle)
		fx.SetCellStyle(sheet, "B2", fmt.Sprintf("E%d", last), styles.PriceStyle)
		fx.SetCellStyle(sheet, "F2", fmt.Sprintf("F%d", last), styles.VolumeStyle)
	}
	return nil
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, series []*types.Series, sheets []string, styles ExcelStyles) error {
	headers := []string{"Sheet", "Symbol", "Source", "Timeframe", "Bars", "From", "To", "First Close", "Last Close", "Change", "Total Volume"}
	if err := r.writeHeader(fx, SummarySheet, headers, styles); err != nil {
		return err
	}

	fx.SetColWidth(SummarySheet, "A", "D", 14)
	fx.SetColWidth(SummarySheet, "E", "E", 10)
	fx.SetColWidth(SummarySheet, "F", "G", 18)
	fx.SetColWidth(SummarySheet, "H", "K", 14)

	for i, s := range series {
		summary := Summarize(s, validation.Split{})
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := fx.SetSheetRow(SummarySheet, cell, &[]interface{}{
			sheets[i],
			summary.Symbol,
			summary.Source,
			summary.Timeframe,
			summary.Bars,
			formatTime(summary.Start),
			formatTime(summary.End),
			summary.FirstClose,
			summary.LastClose,
			summary.ChangePct / 100,
			summary.TotalVolume,
		}); err != nil {
			return err
		}
		fx.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("G%d", row), styles.BaseStyle)
		fx.SetCellStyle(SummarySheet, fmt.Sprintf("H%d", row), fmt.Sprintf("I%d", row), styles.PriceStyle)
		fx.SetCellStyle(SummarySheet, fmt.Sprintf("J%d", row), fmt.Sprintf("J%d", row), styles.PercentStyle)
		fx.SetCellStyle(SummarySheet, fmt.Sprintf("K%d", row), fmt.Sprintf("K%d", row), styles.VolumeStyle)
	}
	return nil
}

// SheetName derives a valid worksheet name ("BTC-USDT 1h") for a series
func SheetName(s *types.Series) string {
	name := strings.TrimSpace(s.Symbol + " " + s.Timeframe)
	name = strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-").Replace(name)
	if name == "" {
		name = "Series"
	}
	return truncateRunes(name, maxSheetNameLen)
}

// truncateRunes cuts s to at most n characters without splitting a rune
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[strings.ToLower(candidate)] || strings.EqualFold(candidate, SummarySheet); i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(name, maxSheetNameLen-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// WriteSeriesXLSX is a convenience function that uses the default Excel reporter
func WriteSeriesXLSX(series []*types.Series, path string) error {
	return NewDefaultExcelReporter().WriteSeriesXLSX(series, path)
}
