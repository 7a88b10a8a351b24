package tcat

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/export"
)

// ExportPDF renders the mapped TCAT records as a printable document: one
// page per certificate, listing the 16 disclosure fields. Same guards and
// grouping as ExportZip.
func (s *Service) ExportPDF(ctx context.Context, certificates []eac.Certificate, fetch export.Fetcher, onProgress export.ProgressFunc) (*export.File, error) {
	groups, related, err := s.prepare(ctx, certificates, fetch, onProgress)
	if err != nil {
		return nil, err
	}

	report := progressReporter(onProgress)
	pdf := newDisclosurePDF()

	for _, group := range groups {
		report(export.StepGenerating, fmt.Sprintf("Rendering disclosure sheets for %s", group.certType))

		mapped, _, err := s.mapGroup(group, related)
		if err != nil {
			return nil, err
		}

		fields := FieldsForType(group.certType)
		for i, m := range mapped {
			writeDisclosurePage(pdf, group.certType, i+1, fields, m)
		}
	}

	report(export.StepDownloading, "Preparing download")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error("Failed to render TCAT PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	name := "PEACH_export_forTCAT_" + s.now().Format(zipTimestampLayout) + ".pdf"
	return &export.File{Name: name, Content: buf.Bytes()}, nil
}

func newDisclosurePDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return pdf
}

func writeDisclosurePage(pdf *gofpdf.Fpdf, certType eac.CertificateType, projectNum int, fields []FieldDefinition, m *MappedData) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 10, fmt.Sprintf("TCAT Disclosure - %s - Project %d", certType.Name(), projectNum), "", 1, "L", true, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	const labelWidth = 65.0
	const valueWidth = 115.0

	for _, f := range fields {
		value := m.FieldValue(f.Field)
		if value == "" {
			value = "-"
		}

		pdf.SetFont("Arial", "B", 9)
		y := pdf.GetY()
		pdf.MultiCell(labelWidth, 6, f.Key+". "+f.Label, "1", "L", false)
		labelBottom := pdf.GetY()

		pdf.SetXY(15+labelWidth, y)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(valueWidth, 6, value, "1", "L", false)
		if pdf.GetY() < labelBottom {
			pdf.SetY(labelBottom)
		}
	}
}
