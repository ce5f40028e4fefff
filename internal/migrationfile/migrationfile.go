// Package migrationfile discovers, sorts and parses migration files on
// disk, and generates new ones for `tern new`.
package migrationfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ternmigrate/tern/internal/command"
)

// File is one discovered migration file: its version-id (everything before
// the first hyphen in the filename) and parsed up/down command sequences.
type File struct {
	VersionID string
	Slug      string
	Path      string
	Up        []command.Command
	Down      []command.Command
}

// rawDoc mirrors a migration file's on-disk shape: a map with "up" and
// "down" keys, each a list of one-key command maps.
type rawDoc struct {
	Up   any `yaml:"up"`
	Down any `yaml:"down"`
}

// Discover lists every migration file under dir, parses it, and returns the
// results sorted by version-id ascending (lexicographic over ASCII).
// Non-YAML files are ignored.
func Discover(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("migrationfile: read dir: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, name)
		f, err := parseFile(path, name)
		if err != nil {
			return nil, fmt.Errorf("migrationfile: %s: %w", name, err)
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].VersionID < files[j].VersionID })
	return files, nil
}

// VersionID extracts the version-id from a filename: everything before the
// first hyphen.
func VersionID(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if i := strings.Index(base, "-"); i >= 0 {
		return base[:i]
	}
	return base
}

func parseFile(path, name string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return File{}, fmt.Errorf("yaml: %w", err)
	}
	up, err := command.ParseSequence(doc.Up)
	if err != nil {
		return File{}, fmt.Errorf("up: %w", err)
	}
	down, err := command.ParseSequence(doc.Down)
	if err != nil {
		return File{}, fmt.Errorf("down: %w", err)
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	versionID, slug := base, ""
	if i := strings.Index(base, "-"); i >= 0 {
		versionID, slug = base[:i], base[i+1:]
	}

	return File{VersionID: versionID, Slug: slug, Path: path, Up: up, Down: down}, nil
}

// skeleton is the empty up/down YAML document `tern new` writes.
const skeleton = "up: []\ndown: []\n"

// New writes a new empty migration file named <version-id>-<slug>.yaml under
// dir, where version-id is a sortable timestamp and slug derives from name
// plus a short collision-resistant suffix.
func New(dir, name string, now time.Time) (string, error) {
	versionID := now.UTC().Format("20060102150405")
	slug := slugify(name) + "-" + uuid.NewString()[:8]
	filename := fmt.Sprintf("%s-%s.yaml", versionID, slug)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(skeleton), 0o644); err != nil {
		return "", fmt.Errorf("migrationfile: write: %w", err)
	}
	return path, nil
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
