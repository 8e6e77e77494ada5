package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	missStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#FFAA00"))
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatEnvironment writes a styled description of the environment
func (f *Formatter) FormatEnvironment(e EnvironmentDTO) error {
	if _, err := fmt.Fprintln(f.writer, headingStyle.Render("Environment")); err != nil {
		return err
	}
	if !e.Recognized {
		_, err := fmt.Fprintln(f.writer, "  "+missStyle.Render("no environment recognized"))
		return err
	}

	rows := [][2]string{{"vendor", e.Vendor}, {"product", e.Product}, {"version", e.Version}}
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, [2]string{k, e.Extra[k]})
	}

	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		if err := f.row(r[0], r[1]); err != nil {
			return err
		}
	}
	return nil
}

// FormatBackends writes a styled line per backend
func (f *Formatter) FormatBackends(bs []BackendDTO) error {
	heading := headingStyle.Render(fmt.Sprintf("Backends (%d)", len(bs)))
	if _, err := fmt.Fprintln(f.writer, heading); err != nil {
		return err
	}
	for i, b := range bs {
		line := fmt.Sprintf("  %d. %s %s", i+1, valueStyle.Render(b.ID),
			keyStyle.Render(fmt.Sprintf("(%s, %d resources)", b.DefaultDomain, b.Resources)))
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatListings writes one "backend name" line per listing
func (f *Formatter) FormatListings(ls []ListingDTO) error {
	for _, l := range ls {
		if _, err := fmt.Fprintf(f.writer, "%s %s\n", keyStyle.Render(l.Backend), l.Name); err != nil {
			return err
		}
	}
	return nil
}

// FormatReadResult writes a read value, one line per entry for maps
func (f *Formatter) FormatReadResult(r ReadResultDTO) error {
	m, ok := r.Value.(map[string]any)
	if !ok {
		_, err := fmt.Fprintln(f.writer, formatValue(r.Value))
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := f.row(k, formatValue(m[k])); err != nil {
			return err
		}
	}
	return nil
}

// FormatReport writes the report text unchanged
func (f *Formatter) FormatReport(r ReportDTO) error {
	_, err := io.WriteString(f.writer, r.Report)
	return err
}

func (f *Formatter) row(key, value string) error {
	_, err := fmt.Fprintf(f.writer, "  %s %s\n", keyStyle.Render(key+":"), valueStyle.Render(value))
	return err
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
