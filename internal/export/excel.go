package export

import (
	"fieldready/pt-coach/internal/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Workout"

var sheetHeader = []interface{}{"Block", "#", "Exercise", "Category", "Equipment", "Sets", "Reps", "Rest", "Notes", "Demo"}

func renderExcel(w *domain.Workout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: w.Title, Creator: "PT Coach"}); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &sheetHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A1", "J1", bold); err != nil {
		return nil, err
	}

	row := 2
	for _, b := range w.Blocks {
		for i, be := range b.Exercises {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			rest := ""
			if be.Prescription.ShowsRest() {
				rest = be.Prescription.Rest
			}
			values := []interface{}{
				b.Name,
				i + 1,
				be.Exercise.Name,
				be.Exercise.Category,
				be.Exercise.Equipment,
				be.Prescription.Sets,
				string(be.Prescription.Reps),
				rest,
				be.Prescription.Notes,
				be.Exercise.DemoURL,
			}
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	if err := f.SetColWidth(sheetName, "A", "C", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
