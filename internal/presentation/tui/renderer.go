package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Without a usable renderer the markdown is returned as is.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// RunsTable formats the runs of exp as a markdown table, in the order given.
func RunsTable(exp *domain.Experiment, runs []*domain.Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", exp.Name)
	if len(runs) == 0 {
		b.WriteString("_No runs recorded._\n")
		return b.String()
	}

	b.WriteString("| Run | Status | Started | Duration | MSE | Artifacts |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d |\n",
			r.ID,
			r.Status,
			r.StartTime.UTC().Format(time.RFC3339),
			duration(r),
			mse(r),
			len(r.Artifacts),
		)
	}
	return b.String()
}

func duration(r *domain.Run) string {
	if r.EndTime == nil {
		return "-"
	}
	return r.EndTime.Sub(r.StartTime).Round(time.Millisecond).String()
}

func mse(r *domain.Run) string {
	v, ok := r.Metrics[domain.MetricMSE]
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
