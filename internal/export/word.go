package export

import (
	"bytes"
	"fmt"

	"fieldready/pt-coach/internal/domain"

	"github.com/gomutex/godocx"
)

func renderWord(w *domain.Workout) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}

	if _, err := doc.AddHeading(w.Title, 0); err != nil {
		return nil, err
	}
	for i, b := range w.Blocks {
		if _, err := doc.AddHeading(fmt.Sprintf("%d. %s", i+1, b.Name), 1); err != nil {
			return nil, err
		}
		for _, be := range b.Exercises {
			line := be.Exercise.Name + ": " + be.Prescription.Summary()
			if be.Exercise.Equipment != "" {
				line += " (" + be.Exercise.Equipment + ")"
			}
			doc.AddParagraph(line)
			if be.Prescription.Notes != "" {
				doc.AddEmptyParagraph().AddText(be.Prescription.Notes).Italic(true)
			}
			if be.Exercise.HasDemo() {
				doc.AddEmptyParagraph().AddText("Demo: " + be.Exercise.DemoURL).Size(9)
			}
		}
	}
	if w.Feedback != nil {
		doc.AddEmptyParagraph().AddText("AAR: " + string(w.Feedback.Rating)).Bold(true)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
