package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

// workbookWriter renders export row sets into a multi-sheet XLSX workbook
type workbookWriter struct {
	file        *excelize.File
	headerStyle int
	sheets      int
}

func newWorkbookWriter() (*workbookWriter, error) {
	file := excelize.NewFile()
	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbookWriter{file: file, headerStyle: style}, nil
}

// addSheet writes one entity collection under the given sheet name
func (w *workbookWriter) addSheet(name string, rows []Row) error {
	if w.sheets == 0 {
		// Reuse the default sheet for the first collection.
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	w.sheets++

	headers := CollectHeaders(rows)
	widths := make([]int, len(headers))

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		title := headerTitle(h)
		if err := w.file.SetCellValue(name, cell, title); err != nil {
			return err
		}
		w.file.SetCellStyle(name, cell, cell, w.headerStyle)
		widths[i] = len(title)
	}

	for rowIdx, row := range rows {
		for colIdx, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val := row[h]
			if err := w.file.SetCellValue(name, cell, val); err != nil {
				return err
			}
			if len(val) > widths[colIdx] {
				widths[colIdx] = len(val)
			}
		}
	}

	w.file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.file.SetColWidth(name, col, col, clampWidth(float64(width)*1.2))
	}
	return nil
}

func (w *workbookWriter) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func clampWidth(width float64) float64 {
	if width < 10 {
		return 10
	}
	if width > 50 {
		return 50
	}
	return width
}

// ExportRelatedWorkbook is the XLSX rendition of ExportRelatedZip: one
// workbook with a sheet per non-empty entity collection.
func (s *Service) ExportRelatedWorkbook(ctx context.Context, certificates []eac.Certificate, fetch Fetcher, onProgress ProgressFunc) (*File, error) {
	if len(certificates) == 0 {
		return nil, ErrNoData
	}

	report := progressReporter(onProgress)

	report(StepCollecting, fmt.Sprintf("Collecting related records for %d certificates", len(certificates)))
	certIDs, psIDs := collectIDs(certificates)
	related, err := fetch(ctx, certIDs, psIDs)
	if err != nil {
		s.logger.Error("Failed to fetch related data", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch related data: %w", err)
	}

	report(StepGenerating, "Generating workbook")
	writer, err := newWorkbookWriter()
	if err != nil {
		s.logger.Error("Failed to prepare workbook", zap.Error(err))
		return nil, err
	}

	sheets := []struct {
		name string
		rows []Row
	}{
		{"Certificates", FormatCertificates(certificates)},
		{"Production Sources", FormatProductionSources(related.ProductionSources)},
		{"Events", FormatEvents(related.Events)},
		{"Organizations", FormatOrganizations(related.Organizations)},
	}
	for _, sheet := range sheets {
		if len(sheet.rows) == 0 {
			continue
		}
		if err := writer.addSheet(sheet.name, sheet.rows); err != nil {
			s.logger.Error("Failed to write workbook sheet",
				zap.String("sheet", sheet.name),
				zap.Error(err))
			return nil, err
		}
	}

	report(StepDownloading, "Preparing download")
	content, err := writer.bytes()
	if err != nil {
		s.logger.Error("Failed to render workbook", zap.Error(err))
		return nil, err
	}

	ts := s.now().Format(timestampLayout)
	return &File{Name: "eac_export_" + ts + ".xlsx", Content: content}, nil
}
