// Package cli renders command results as tables, JSON or YAML.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"sbwt/internal/app"
	"sbwt/internal/registry"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates the value of an -o flag.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Printer writes results to w in Format.
type Printer struct {
	w      io.Writer
	Format OutputFormat
}

// NewPrinter returns a Printer.
func NewPrinter(w io.Writer, format OutputFormat) *Printer {
	return &Printer{w: w, Format: format}
}

// Structured writes v as JSON or YAML and reports whether it did. Table
// output is left to the caller.
func (p *Printer) Structured(v interface{}) (bool, error) {
	switch p.Format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return true, err
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = p.w.Write(data)
		return true, err
	}
	return false, nil
}

func (p *Printer) newTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.w)
	t.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = text.FgHiCyan.Sprint(strings.ToUpper(h))
	}
	t.AppendHeader(row)
	return t
}

// Records prints the registry.
func (p *Printer) Records(records []registry.Record, blockSize int) error {
	if records == nil {
		records = []registry.Record{}
	}
	if done, err := p.Structured(records); done {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(p.w, text.FgYellow.Sprint("No environments registered"))
		return nil
	}

	t := p.newTable("identifier", "name", "ports", "path", "allocated")
	for _, r := range records {
		t.AppendRow(table.Row{
			r.Identifier,
			r.Name,
			fmt.Sprintf("%d-%d", r.PortBase, r.PortBase+blockSize-1),
			r.EnvironmentPath,
			formatAge(r.AllocatedAt),
		})
	}
	t.Render()
	fmt.Fprintf(p.w, "\n%s %d\n", text.FgHiBlue.Sprint("Total:"), len(records))
	return nil
}

// StartResult prints what start did.
func (p *Printer) StartResult(res *app.StartResult) error {
	if done, err := p.Structured(res); done {
		return err
	}
	verb := "Allocated"
	if res.Reallocated() {
		verb = "Re-allocated"
	}
	fmt.Fprintf(p.w, "%s %s %s port block %d\n",
		text.FgGreen.Sprint("✔"), verb, text.Bold.Sprint(res.Record.Identifier), res.Record.PortBase)

	t := p.newTable("template", "allocated")
	for _, old := range res.Record.PortMap.SortedKeys() {
		t.AppendRow(table.Row{old, res.Record.PortMap[old]})
	}
	t.Render()

	fmt.Fprintf(p.w, "Config:   %s\n", res.ConfigPath)
	if res.APIURL != "" {
		fmt.Fprintf(p.w, "API:      %s\n", res.APIURL)
	}
	for _, f := range res.RestoredFiles {
		fmt.Fprintf(p.w, "Restored: %s\n", f)
	}
	for _, f := range res.ModifiedFiles {
		fmt.Fprintf(p.w, "Updated:  %s\n", f)
	}
	return nil
}

// StopResult prints what stop did.
func (p *Printer) StopResult(res *app.StopResult) error {
	if done, err := p.Structured(res); done {
		return err
	}
	for _, f := range res.RestoredFiles {
		fmt.Fprintf(p.w, "Restored: %s\n", f)
	}
	if res.Removed {
		fmt.Fprintf(p.w, "%s Unregistered %s\n", text.FgGreen.Sprint("✔"), res.EnvironmentPath)
	} else {
		fmt.Fprintf(p.w, "%s %s was not registered\n", text.FgHiBlack.Sprint("-"), res.EnvironmentPath)
	}
	return nil
}

// Status prints the status of one environment.
func (p *Printer) Status(st *app.Status) error {
	if done, err := p.Structured(st); done {
		return err
	}

	if st.Record == nil {
		fmt.Fprintf(p.w, "%s %s is not registered\n", text.FgYellow.Sprint("⚠"), st.EnvironmentPath)
	} else {
		r := st.Record
		fmt.Fprintf(p.w, "%s  %s\n", text.Bold.Sprint(r.Identifier), text.FgHiBlack.Sprint(r.EnvironmentPath))
		if st.Repository != "" {
			fmt.Fprintf(p.w, "Repo:      %s\n", st.Repository)
		}
		fmt.Fprintf(p.w, "Name:      %s\nPort base: %d\nAllocated: %s\n", r.Name, r.PortBase, formatAge(r.AllocatedAt))
		if st.APIURL != "" {
			fmt.Fprintf(p.w, "API:       %s\n", st.APIURL)
		}
	}

	if len(st.Ports) > 0 {
		t := p.newTable("key", "template", "allocated")
		for _, port := range st.Ports {
			allocated := port.Allocated
			if allocated == "" {
				allocated = text.FgHiBlack.Sprint("-")
			}
			t.AppendRow(table.Row{port.Key, port.Template, allocated})
		}
		t.Render()
	}

	if len(st.EnvFiles) > 0 {
		t := p.newTable("env file", "backup", "references")
		for _, f := range st.EnvFiles {
			var refs []string
			for _, r := range f.References {
				refs = append(refs, fmt.Sprintf("%s=%s:%d", r.Key, r.Host, r.Port))
			}
			t.AppendRow(table.Row{filepath.Base(f.Path), formatBool(f.BackedUp), strings.Join(refs, "\n")})
		}
		t.Render()
	}

	switch {
	case !st.Config.Exists:
		fmt.Fprintf(p.w, "Config:    %s (not generated)\n", st.Config.Path)
	case st.Config.Valid:
		fmt.Fprintf(p.w, "Config:    %s %s project_id=%s\n", st.Config.Path, text.FgGreen.Sprint("valid"), st.Config.ProjectID)
	default:
		fmt.Fprintf(p.w, "Config:    %s %s %s\n", st.Config.Path, text.FgRed.Sprint("invalid"), st.Config.Error)
	}
	for _, w := range st.Warnings {
		fmt.Fprintf(p.w, "%s %s\n", text.FgYellow.Sprint("⚠"), w)
	}
	return nil
}

func formatBool(b bool) string {
	if b {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgHiBlack.Sprint("no")
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
