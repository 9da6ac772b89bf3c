package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mcoot/realmgate/internal/storage/postgres"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case HashResult:
		o.printHashResult(v)
	case DBReport:
		o.printDBReport(v)
	case MigrationStatus:
		o.printMigrationStatus(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult matches the server's /healthz body
type HealthResult struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HashResult is the output of the hash command
type HashResult struct {
	Username string `json:"username"`
	Hash     string `json:"hash"`
}

// DBColumn describes one account table column
type DBColumn struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default,omitempty"`
}

// DBReport is the output of the dbcheck command
type DBReport struct {
	ServerVersion string     `json:"server_version"`
	TableExists   bool       `json:"table_exists"`
	Columns       []DBColumn `json:"columns,omitempty"`
	AccountCount  int64      `json:"account_count"`
}

// DBReportFromTable converts a postgres.TableReport
func DBReportFromTable(r *postgres.TableReport) DBReport {
	report := DBReport{
		ServerVersion: r.ServerVersion,
		TableExists:   r.TableExists,
		AccountCount:  r.AccountCount,
	}
	for _, c := range r.Columns {
		report.Columns = append(report.Columns, DBColumn{
			Name:     c.Name,
			Type:     c.DataType,
			Nullable: c.Nullable,
			Default:  c.Default,
		})
	}
	return report
}

// MigrationStatus is the output of the migrate commands
type MigrationStatus struct {
	Action  string `json:"action"`
	Version uint   `json:"version"`
	Dirty   bool   `json:"dirty"`
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)

	names := make([]string, 0, len(h.Checks))
	for name := range h.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(o.w, "  %s: %s\n", name, h.Checks[name])
	}
}

func (o *Output) printHashResult(h HashResult) {
	_, _ = fmt.Fprintln(o.w, h.Hash)
}

func (o *Output) printDBReport(r DBReport) {
	_, _ = fmt.Fprintf(o.w, "Server: %s\n", r.ServerVersion)
	if !r.TableExists {
		_, _ = fmt.Fprintln(o.w, "Table account: missing")
		return
	}

	_, _ = fmt.Fprintln(o.w, "Table account: present")
	for _, c := range r.Columns {
		null := "NOT NULL"
		if c.Nullable {
			null = "NULL"
		}
		line := fmt.Sprintf("  %-16s %-28s %s", c.Name, c.Type, null)
		if c.Default != nil {
			line += " DEFAULT " + *c.Default
		}
		_, _ = fmt.Fprintln(o.w, line)
	}
	_, _ = fmt.Fprintf(o.w, "Accounts: %d\n", r.AccountCount)
}

func (o *Output) printMigrationStatus(m MigrationStatus) {
	dirty := ""
	if m.Dirty {
		dirty = " (dirty)"
	}
	_, _ = fmt.Fprintf(o.w, "migrate %s: schema version %d%s\n", m.Action, m.Version, dirty)
}
