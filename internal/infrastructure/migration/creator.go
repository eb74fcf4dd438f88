package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)
	nameCleaner          = regexp.MustCompile(`[^a-z0-9]+`)
)

var migrationTemplate = template.Must(template.New("migration").Parse(`-- {{.Direction}}: {{.Name}}
-- Created: {{.Created}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`))

// MigrationFile is a newly created up/down pair
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes the next numbered up/down pair into dir. Versions
// are sequential (000001, 000002, ...) so they sort the same on every host.
func CreateMigration(dir, name, description string, now time.Time) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	mf := &MigrationFile{
		Version:  next,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}
	for _, f := range []struct{ path, direction string }{{mf.UpPath, "up"}, {mf.DownPath, "down"}} {
		if err := writeMigration(f.path, f.direction, slug, description, now); err != nil {
			_ = os.Remove(mf.UpPath)
			return nil, err
		}
	}
	return mf, nil
}

func writeMigration(path, direction, name, description string, now time.Time) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return migrationTemplate.Execute(f, map[string]string{
		"Direction":   direction,
		"Name":        name,
		"Created":     now.UTC().Format(time.RFC3339),
		"Description": description,
	})
}

func sanitizeName(name string) string {
	return strings.Trim(nameCleaner.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// Migration describes one versioned migration found on disk
type Migration struct {
	Version uint
	Name    string
	HasDown bool
}

// String renders the migration as its file base name
func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// ListMigrations returns the migrations in dir ordered by version. A
// missing directory yields an empty list.
func ListMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Migration{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 32)
		if err != nil {
			continue
		}
		m, ok := byVersion[uint(v)]
		if !ok {
			m = &Migration{Version: uint(v), Name: match[2]}
			byVersion[uint(v)] = m
		}
		if match[3] == "down" {
			m.HasDown = true
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
