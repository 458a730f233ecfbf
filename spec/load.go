package spec

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// DefaultPattern matches spec files anywhere below the spec directory.
const DefaultPattern = "**/*.spec.json"

// Load reads every file matching pattern from fsys, in lexical path order, into one collection.
//
// A file holds either a single record or an array of records. Files that fail to decode are skipped and
// reported together in the returned error, alongside the records that did load.
func Load(fsys afero.Fs, pattern string) (Collection, error) {
	paths, err := Files(fsys, pattern)
	if err != nil {
		return nil, err
	}

	var errs *multierror.Error
	records := Collection{}
	for _, p := range paths {
		parsed, err := LoadFile(fsys, p)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}

		records = append(records, parsed...)
	}

	return records, errs.ErrorOrNil()
}

// LoadDir loads the spec files below dir on the OS filesystem.
func LoadDir(dir, pattern string) (Collection, error) {
	return Load(afero.NewBasePathFs(afero.NewOsFs(), dir), pattern)
}

// Files lists the paths in fsys matching pattern, sorted.
func Files(fsys afero.Fs, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := doublestar.Glob(afero.NewIOFS(fsys), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// LoadFile decodes a single spec file. Files ending in .yaml or .yml are read as YAML, everything else as
// JSON.
func LoadFile(fsys afero.Fs, name string) (Collection, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var records Collection
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		records, err = ParseYAML(data)
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return Collection{}, nil
		}
		records, err = ParseJSON(data)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	return records, nil
}

// Parse decodes one record, or an array of records. Documents opening with '{' or '[' are read as JSON,
// anything else as YAML.
func Parse(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Collection{}, nil
	}

	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ParseJSON(trimmed)
	}

	return ParseYAML(trimmed)
}

// ParseYAML decodes one record, or a sequence of records, from a YAML document.
func ParseYAML(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Collection{}, nil
	}

	var records Collection
	if trimmed[0] == '[' || (trimmed[0] == '-' && !bytes.HasPrefix(trimmed, []byte("---"))) {
		if err := yaml.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
	} else {
		var r Record
		if err := yaml.Unmarshal(trimmed, &r); err != nil {
			return nil, err
		}
		records = Collection{r}
	}

	for i := range records {
		records[i] = *records[i].Copy()
	}

	return records, nil
}
