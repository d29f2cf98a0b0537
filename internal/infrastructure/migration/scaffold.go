package migration

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// versionLayout doubles as the sort key for migration files.
const versionLayout = "20060102150405"

var pairTemplate = template.Must(template.New("migration").Parse(
	`-- {{.Name}}{{if .Rollback}} (rollback){{end}}
{{- if .Description}}
-- {{.Description}}{{end}}
-- Created {{.Created}}

`))

// Entry is one migration found on disk.
type Entry struct {
	Version uint
	Name    string
	HasDown bool
}

// Pair is a freshly scaffolded up/down file pair.
type Pair struct {
	Version  string
	UpPath   string
	DownPath string
}

// Scaffold writes an empty up/down pair for name into dir, versioned by now.
func Scaffold(dir, name, description string, now time.Time) (*Pair, error) {
	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	version := now.UTC().Format(versionLayout)
	base := filepath.Join(dir, version+"_"+slug)
	p := &Pair{Version: version, UpPath: base + ".up.sql", DownPath: base + ".down.sql"}

	data := map[string]any{
		"Name":        slug,
		"Description": description,
		"Created":     now.UTC().Format(time.RFC3339),
	}
	data["Rollback"] = false
	if err := writeTemplate(p.UpPath, data); err != nil {
		return nil, err
	}
	data["Rollback"] = true
	if err := writeTemplate(p.DownPath, data); err != nil {
		_ = os.Remove(p.UpPath)
		return nil, err
	}
	return p, nil
}

func writeTemplate(path string, data map[string]any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := pairTemplate.Execute(f, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// slugify lowercases name and joins its alphanumeric runs with underscores.
func slugify(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(words, "_")
}

// List returns the migrations in dir ordered by version. A missing
// directory holds no migrations.
func List(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	byVersion := map[uint]*Entry{}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		stem, down := strings.CutSuffix(f.Name(), ".down.sql")
		if !down {
			var up bool
			if stem, up = strings.CutSuffix(f.Name(), ".up.sql"); !up {
				continue
			}
		}
		rawVersion, name, _ := strings.Cut(stem, "_")
		version, err := strconv.ParseUint(rawVersion, 10, 64)
		if err != nil {
			continue
		}
		e, ok := byVersion[uint(version)]
		if !ok {
			e = &Entry{Version: uint(version), Name: name}
			byVersion[uint(version)] = e
		}
		e.HasDown = e.HasDown || down
	}

	entries := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		entries = append(entries, *e)
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Version, b.Version) })
	return entries, nil
}
