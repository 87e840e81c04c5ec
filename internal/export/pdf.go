package export

import (
	"bytes"
	"fmt"

	"fieldready/pt-coach/internal/domain"

	"github.com/go-pdf/fpdf"
)

const pdfFont = "Helvetica"

func renderPDF(w *domain.Workout) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(w.Title, true)
	pdf.SetCreator("PT Coach", true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 18)
	pdf.CellFormat(0, 10, tr(w.Title), "", 1, "L", false, 0, "")

	for i, b := range w.Blocks {
		pdf.Ln(4)
		pdf.SetFont(pdfFont, "B", 13)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%d. %s", i+1, b.Name)), "B", 1, "L", false, 0, "")

		for _, be := range b.Exercises {
			pdf.SetFont(pdfFont, "", 11)
			line := be.Exercise.Name + "  " + be.Prescription.Summary()
			if be.Exercise.Equipment != "" {
				line += "  (" + be.Exercise.Equipment + ")"
			}
			pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
			if be.Prescription.Notes != "" {
				pdf.SetFont(pdfFont, "I", 10)
				pdf.MultiCell(0, 5, tr(be.Prescription.Notes), "", "L", false)
			}
			if be.Exercise.HasDemo() {
				pdf.SetFont(pdfFont, "U", 9)
				pdf.SetTextColor(30, 70, 160)
				pdf.CellFormat(0, 5, "Demo", "", 1, "L", false, 0, be.Exercise.DemoURL)
				pdf.SetTextColor(0, 0, 0)
			}
		}
	}

	if w.Feedback != nil {
		pdf.Ln(6)
		pdf.SetFont(pdfFont, "B", 11)
		pdf.CellFormat(0, 6, tr("AAR: "+string(w.Feedback.Rating)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
