package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/types"
	"github.com/arthur-debert/dotkeep/pkg/validate"
)

// Renderer writes command output in the selected format.
type Renderer struct {
	out    io.Writer
	format Format
}

// NewRenderer creates a renderer for the given writer and format.
// FormatAuto must be resolved by the caller first.
func NewRenderer(out io.Writer, format Format) *Renderer {
	return &Renderer{out: out, format: format}
}

func (r *Renderer) styled() bool { return r.format == FormatTerminal }

// JSON marshals v with indentation. Used for every command under
// --format json so output stays scriptable.
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outcomeLabel(o types.Outcome, styled bool) string {
	if !styled {
		return string(o)
	}
	switch o {
	case types.OutcomeSuccess:
		return pterm.Green("ok")
	case types.OutcomeSkipped:
		return pterm.Yellow("skipped")
	default:
		return pterm.Red("failed")
	}
}

// BatchReport renders the per-entry outcomes of a backup or restore run
// followed by a one-line summary.
func (r *Renderer) BatchReport(title string, report *types.BatchReport) error {
	results := report.Results()
	if r.format == FormatJSON {
		return r.JSON(map[string]interface{}{
			"operation": title,
			"results":   results,
			"succeeded": report.Succeeded(),
			"skipped":   report.Skipped(),
			"failed":    report.Failed(),
		})
	}

	for _, res := range results {
		line := fmt.Sprintf("  %-10s %s", outcomeLabel(res.Outcome, r.styled()), res.ID)
		if res.Detail != "" {
			line += "  (" + res.Detail + ")"
		}
		fmt.Fprintln(r.out, line)
	}
	summary := fmt.Sprintf("%s: %d ok, %d skipped, %d failed",
		title, report.Succeeded(), report.Skipped(), report.Failed())
	if r.styled() && report.HasFailures() {
		summary = pterm.Red(summary)
	}
	fmt.Fprintln(r.out, summary)
	return nil
}

func severityLabel(s validate.Severity, styled bool) string {
	if !styled {
		return string(s)
	}
	switch s {
	case validate.SeverityError:
		return pterm.Red(string(s))
	case validate.SeverityWarning:
		return pterm.Yellow(string(s))
	default:
		return pterm.Cyan(string(s))
	}
}

// ValidationReport renders findings grouped as they were produced, each
// with its suggested fix.
func (r *Renderer) ValidationReport(report *validate.Report) error {
	if r.format == FormatJSON {
		return r.JSON(map[string]interface{}{
			"findings": report.Findings,
			"errors":   report.Errors(),
			"warnings": report.Warnings(),
		})
	}

	if len(report.Findings) == 0 {
		fmt.Fprintln(r.out, "everything checks out")
		return nil
	}
	for _, f := range report.Findings {
		fmt.Fprintf(r.out, "%-8s [%s] %s\n", severityLabel(f.Severity, r.styled()), f.Check, f.Message)
		if f.Fix != "" {
			fmt.Fprintf(r.out, "         fix: %s\n", f.Fix)
		}
	}
	fmt.Fprintf(r.out, "%d error(s), %d warning(s)\n", report.Errors(), report.Warnings())
	return nil
}

func enabledMark(enabled, styled bool) string {
	if enabled {
		if styled {
			return pterm.Green("on")
		}
		return "on"
	}
	if styled {
		return pterm.Gray("off")
	}
	return "off"
}

// ConfigList renders the tracked-configs registry.
func (r *Renderer) ConfigList(items []registry.Item[types.ConfigEntry]) error {
	if r.format == FormatJSON {
		return r.JSON(items)
	}
	rows := [][]string{{"ID", "NAME", "SOURCE", "TARGET", "CATEGORY", "ENABLED"}}
	for _, item := range items {
		rows = append(rows, []string{
			item.ID, item.Entry.Name, item.Entry.SourcePath,
			item.Entry.TargetPath.Display(), string(item.Entry.Category),
			enabledMark(item.Entry.Enabled, r.styled()),
		})
	}
	return r.table(rows)
}

// PackageList renders the package-manager registry.
func (r *Renderer) PackageList(items []registry.Item[types.PackageEntry]) error {
	if r.format == FormatJSON {
		return r.JSON(items)
	}
	rows := [][]string{{"ID", "NAME", "COMMAND", "OUTPUT", "ENABLED"}}
	for _, item := range items {
		command := item.Entry.Command
		if len(item.Entry.Args) > 0 {
			command += " " + strings.Join(item.Entry.Args, " ")
		}
		rows = append(rows, []string{
			item.ID, item.Entry.Name, command, item.Entry.OutputFile,
			enabledMark(item.Entry.Enabled, r.styled()),
		})
	}
	return r.table(rows)
}

// SecretList renders the secrets registry. Targets are shown, stored
// names are not; hashed payload names stay opaque on purpose.
func (r *Renderer) SecretList(items []registry.Item[types.SecretEntry]) error {
	if r.format == FormatJSON {
		return r.JSON(items)
	}
	rows := [][]string{{"ID", "NAME", "TARGET", "HASHED NAME", "ENABLED"}}
	for _, item := range items {
		hashed := "no"
		if item.Entry.EncryptFilename {
			hashed = "yes"
		}
		rows = append(rows, []string{
			item.ID, item.Entry.Name, item.Entry.TargetPath, hashed,
			enabledMark(item.Entry.Enabled, r.styled()),
		})
	}
	return r.table(rows)
}

// ProfileRow is one line of the profile listing.
type ProfileRow struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default"`
	Active      bool   `json:"active"`
}

// ProfileList renders profile definitions with active/default markers.
func (r *Renderer) ProfileList(rows []ProfileRow) error {
	if r.format == FormatJSON {
		return r.JSON(rows)
	}
	table := [][]string{{"NAME", "DESCRIPTION", "FLAGS"}}
	for _, row := range rows {
		var flags []string
		if row.Active {
			flags = append(flags, "active")
		}
		if row.Default {
			flags = append(flags, "default")
		}
		table = append(table, []string{row.Name, row.Description, strings.Join(flags, ", ")})
	}
	return r.table(table)
}

func (r *Renderer) table(rows [][]string) error {
	if r.styled() {
		rendered, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, rendered)
		return nil
	}
	for _, row := range rows {
		fmt.Fprintln(r.out, strings.Join(row, "\t"))
	}
	return nil
}
