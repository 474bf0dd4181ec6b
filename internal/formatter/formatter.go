// package formatter writes list backups (TOML, JSON, YAML, CSV, Markdown) and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
)

// Format is a backup file format.
type Format string

const (
	FormatTOML     Format = "toml"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Extension is the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ParseFormat validates s. An empty string selects TOML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatTOML, nil
	case FormatTOML, FormatJSON, FormatYAML, FormatCSV, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: backup format %q: must be one of toml, json, yaml, csv, markdown", shared.ErrInvalidArgument, s)
	}
}

// UserSection summarizes whose list was backed up. Counts only has statuses the service reported.
type UserSection struct {
	UserID   int            `toml:"user_id" json:"user_id" yaml:"user_id"`
	Username string         `toml:"username" json:"username" yaml:"username"`
	Service  string         `toml:"service" json:"service" yaml:"service"`
	ListType string         `toml:"list_type" json:"list_type" yaml:"list_type"`
	Total    int            `toml:"total" json:"total" yaml:"total"`
	Counts   map[string]int `toml:"counts" json:"counts" yaml:"counts"`
}

// EntryRecord is one backed-up list entry.
type EntryRecord struct {
	Title     string  `toml:"title" json:"title" yaml:"title"`
	ID        int     `toml:"id" json:"id" yaml:"id"`
	IDMal     *int    `toml:"id_mal,omitempty" json:"id_mal,omitempty" yaml:"id_mal,omitempty"`
	Total     *int    `toml:"total,omitempty" json:"total,omitempty" yaml:"total,omitempty"`
	Format    string  `toml:"format,omitempty" json:"format,omitempty" yaml:"format,omitempty"`
	Status    string  `toml:"status" json:"status" yaml:"status"`
	Score     float64 `toml:"score" json:"score" yaml:"score"`
	Progress  int     `toml:"progress" json:"progress" yaml:"progress"`
	Repeating bool    `toml:"repeating,omitempty" json:"repeating,omitempty" yaml:"repeating,omitempty"`
}

// Backup is the normalized document every format is rendered from.
//
// Lists is keyed by lower-case status. A status the service never reported has no key; a
// reported status with no entries maps to an empty, non-nil slice.
type Backup struct {
	User  UserSection              `toml:"user_section" json:"user_section" yaml:"user_section"`
	Lists map[string][]EntryRecord `toml:"lists" json:"lists" yaml:"lists"`

	order []string
}

// NewBackup builds the document for m.
func NewBackup(m *models.ListModel) *Backup {
	b := &Backup{
		User: UserSection{
			UserID:   m.User.ID,
			Username: m.User.Name,
			Service:  string(m.Service),
			ListType: m.Kind.String(),
			Total:    m.Len(),
			Counts:   map[string]int{},
		},
		Lists: map[string][]EntryRecord{},
	}

	for _, status := range m.Statuses() {
		key := statusKey(status)
		entries, _ := m.Partition(status)
		records := make([]EntryRecord, 0, len(entries))
		for _, e := range entries {
			records = append(records, EntryRecord{
				Title:     e.Title,
				ID:        e.ID,
				IDMal:     e.CrossRefID,
				Total:     e.Total,
				Format:    e.Format,
				Status:    string(e.Status),
				Score:     e.ScoreOrZero(),
				Progress:  e.ProgressOrZero(),
				Repeating: e.Repeating,
			})
		}
		b.Lists[key] = records
		b.User.Counts[key] = len(records)
		b.order = append(b.order, key)
	}
	return b
}

// Statuses returns the list keys in the order the service reported them.
func (b *Backup) Statuses() []string {
	return append([]string(nil), b.order...)
}

func statusKey(s models.Status) string {
	return strings.ToLower(string(s))
}

// Write renders b to w in format f.
func Write(w io.Writer, b *Backup, f Format) error {
	switch f {
	case FormatTOML, "":
		return WriteTOML(w, b)
	case FormatJSON:
		return WriteJSON(w, b)
	case FormatYAML:
		return WriteYAML(w, b)
	case FormatCSV:
		return WriteCSV(w, b)
	case FormatMarkdown:
		return WriteMarkdown(w, b)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, f)
	}
}

func WriteTOML(w io.Writer, b *Backup) error {
	if err := toml.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("failed to encode TOML backup: %w", err)
	}
	return nil
}

func WriteJSON(w io.Writer, b *Backup) error {
	data, err := shared.MarshalJSON(b)
	if err != nil {
		return fmt.Errorf("failed to encode JSON backup: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func WriteYAML(w io.Writer, b *Backup) error {
	data, err := yaml.MarshalWithOptions(b, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return fmt.Errorf("failed to encode YAML backup: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteCSV writes one row per entry. Observed-empty statuses produce no rows.
func WriteCSV(w io.Writer, b *Backup) error {
	writer := csv.NewWriter(w)

	headers := []string{"Status", "ID", "MAL ID", "Title", "Format", "Progress", "Total", "Score", "Repeating"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, key := range b.order {
		for _, e := range b.Lists[key] {
			record := []string{
				e.Status,
				strconv.Itoa(e.ID),
				optional(e.IDMal),
				e.Title,
				e.Format,
				strconv.Itoa(e.Progress),
				optional(e.Total),
				strconv.FormatFloat(e.Score, 'f', -1, 64),
				strconv.FormatBool(e.Repeating),
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// WriteMarkdown writes a heading, the user summary, and one section per reported status.
func WriteMarkdown(w io.Writer, b *Backup) error {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s %s list\n\n", b.User.Username, b.User.ListType))
	buf.WriteString(fmt.Sprintf("**User**: %s (%d)\n", b.User.Username, b.User.UserID))
	buf.WriteString(fmt.Sprintf("**Service**: %s\n", b.User.Service))
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", b.User.Total))

	for _, key := range b.order {
		entries := b.Lists[key]
		buf.WriteString(fmt.Sprintf("## %s (%d)\n\n", models.Status(key).Label(), len(entries)))
		if len(entries) == 0 {
			buf.WriteString("_No entries_\n\n")
			continue
		}

		buf.WriteString("| Title | ID | MAL ID | Progress | Score |\n")
		buf.WriteString("|---|---|---|---|---|\n")
		for _, e := range entries {
			buf.WriteString(fmt.Sprintf("| %s | %d | %s | %d/%s | %s |\n",
				strings.ReplaceAll(e.Title, "|", `\|`), e.ID, optional(e.IDMal), e.Progress,
				orDash(optional(e.Total)), strconv.FormatFloat(e.Score, 'f', -1, 64)))
		}
		buf.WriteString("\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func optional(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func orDash(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// BackupPath is {dir}/{kind}-backup.{ext}.
func BackupPath(dir string, kind models.MediaKind, f Format) string {
	return filepath.Join(dir, fmt.Sprintf("%s-backup.%s", kind, f.Extension()))
}

// WriteFile renders b into path, creating the parent directory and truncating any previous backup.
func WriteFile(b *Backup, f Format, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, b, f); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}
