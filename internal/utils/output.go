package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// OutputFormat represents different output formats
type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatJSON    OutputFormat = "json"
	FormatQuiet   OutputFormat = "quiet"
)

// MedicationRow is one medication prepared for display.
type MedicationRow struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Dosage   string    `json:"dosage,omitempty"`
	Time     string    `json:"time"`
	Remind   string    `json:"remind_at,omitempty"`
	Rule     string    `json:"rule"`
	Lead     int       `json:"lead_minutes,omitempty"`
	Enabled  bool      `json:"enabled"`
	NextDose time.Time `json:"next_dose,omitempty"`
	Status   string    `json:"status,omitempty"`
}

// Styles contains lipgloss styles for different elements
type Styles struct {
	Header   lipgloss.Style
	ID       lipgloss.Style
	Name     lipgloss.Style
	Meta     lipgloss.Style
	Disabled lipgloss.Style
	Taken    lipgloss.Style
	Missed   lipgloss.Style
	Pending  lipgloss.Style
}

func defaultStyles() *Styles {
	return &Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		ID:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Name:     lipgloss.NewStyle().Bold(true),
		Meta:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Disabled: lipgloss.NewStyle().Faint(true),
		Taken:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Missed:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Pending:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Renderer handles output formatting
type Renderer struct {
	format OutputFormat
	color  bool
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer(format OutputFormat, color bool) *Renderer {
	return &Renderer{format: format, color: color, styles: defaultStyles()}
}

// RenderMedications formats the medication list in the configured format.
func (r *Renderer) RenderMedications(rows []MedicationRow) (string, error) {
	switch r.format {
	case FormatJSON:
		b, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	case FormatQuiet:
		var sb strings.Builder
		for _, row := range rows {
			sb.WriteString(row.ID + "\n")
		}
		return sb.String(), nil
	}

	if len(rows) == 0 {
		return "No medications. Add one with `dosett add`.", nil
	}

	var sb strings.Builder
	sb.WriteString(r.style(r.styles.Header, fmt.Sprintf("%-12s %-20s %-7s %-7s %-12s %-18s %s",
		"ID", "NAME", "TIME", "REMIND", "REPEATS", "NEXT DOSE", "STATUS")) + "\n")
	for _, row := range rows {
		remind := row.Remind
		if remind == "" {
			remind = "-"
		}
		line := fmt.Sprintf("%-12s %-20s %-7s %-7s %-12s %-18s %s",
			truncate(row.ID, 12),
			truncate(r.nameWithDosage(row), 20),
			row.Time,
			remind,
			row.Rule,
			r.formatNext(row),
			r.statusLabel(row.Status),
		)
		if !row.Enabled {
			line = r.style(r.styles.Disabled, line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String(), nil
}

func (r *Renderer) nameWithDosage(row MedicationRow) string {
	if row.Dosage == "" {
		return row.Name
	}
	return row.Name + " " + row.Dosage
}

func (r *Renderer) formatNext(row MedicationRow) string {
	if !row.Enabled {
		return "disabled"
	}
	if row.NextDose.IsZero() {
		return "-"
	}
	return row.NextDose.Format("Mon Jan 2 15:04")
}

func (r *Renderer) statusLabel(status string) string {
	switch status {
	case "taken":
		return r.style(r.styles.Taken, status)
	case "missed":
		return r.style(r.styles.Missed, status)
	case "pending":
		return r.style(r.styles.Pending, status)
	case "":
		return "-"
	}
	return r.style(r.styles.Meta, status)
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
