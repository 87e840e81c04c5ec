package card

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WritePrintable writes a plain-text rendition of v suitable for printing.
func WritePrintable(out io.Writer, v View) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, v.Title)
	fmt.Fprintln(tw, strings.Repeat("=", len(v.Title)))
	for _, b := range v.Blocks {
		fmt.Fprintf(tw, "\n%d. %s\n", b.Index+1, b.Name)
		fmt.Fprintln(tw, "  Exercise\tSets x Reps\tRest\tEquipment")
		for _, r := range b.Exercises {
			fmt.Fprintf(tw, "  %s\t%d x %s\t%s\t%s\n", r.Name, r.Sets, r.Reps, r.Rest, r.Equipment)
			if r.Notes != "" {
				fmt.Fprintf(tw, "    Notes: %s\n", r.Notes)
			}
			if r.DemoURL != "" {
				fmt.Fprintf(tw, "    Demo: %s\n", r.DemoURL)
			}
		}
	}
	if v.Feedback.Phase == PhaseSubmitted {
		fmt.Fprintf(tw, "\n%s\n", v.Feedback.Message)
	}
	return tw.Flush()
}
