package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/doeshing/reelai/internal/domain"
)

func renderJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// renderResult prints a recommendation result in a compact, ASCII-only format.
func renderResult(out io.Writer, result domain.RecommendationResult, format string) error {
	if format == OutputJSON {
		return renderJSON(out, result)
	}
	fmt.Fprintf(out, "%s\n", result.Prompt)
	source := result.Provider
	if result.IsFallback {
		source += " (fallback)"
	}
	fmt.Fprintf(out, "Provider: %s\n\n", source)
	if result.Empty() {
		fmt.Fprintln(out, MsgNoResults)
		return nil
	}
	for i, rec := range result.Results {
		fmt.Fprintf(out, "%2d. %s%s [%s]\n", i+1, rec.Title, yearSuffix(rec.Year), rec.MediaType)
		if rec.Reason != "" {
			fmt.Fprintf(out, "    %s\n", rec.Reason)
		}
	}
	return nil
}

func renderMoods(out io.Writer, moods []domain.Mood, format string) error {
	if format == OutputJSON {
		return renderJSON(out, moods)
	}
	for _, m := range moods {
		label := m.Label
		if m.Emoji != "" {
			label = m.Emoji + " " + label
		}
		fmt.Fprintf(out, "%-14s %s - %s\n", m.Slug, label, m.Description)
	}
	return nil
}

func renderDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n",
			strings.ToUpper(string(check.Status)),
			check.Name,
			check.Details)
	}
}

func yearSuffix(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d)", year)
}
