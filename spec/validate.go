package spec

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// Validate checks every record for the fields a usable spec needs. All problems are reported together.
func (c Collection) Validate() error {
	var errs *multierror.Error
	seen := map[string]bool{}

	for i, r := range c {
		label := r.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errs = multierror.Append(errs, fmt.Errorf("spec %s is missing a 'name'", label))
		} else if seen[r.Name] {
			errs = multierror.Append(errs, fmt.Errorf("there is more than one spec named %q", r.Name))
		}
		seen[r.Name] = true

		if r.URL == "" {
			errs = multierror.Append(errs, fmt.Errorf("spec %s is missing a 'url'", label))
		}

		if r.Response == nil {
			errs = multierror.Append(errs, fmt.Errorf("spec %s is missing a 'response'", label))
		} else if r.Response.hasRepresentation() {
			if _, ok := r.Response.ContentType(); !ok {
				errs = multierror.Append(errs, fmt.Errorf("spec %s response is missing a 'Content-Type' header", label))
			}
		}

		if r.Request.hasBothRepresentations() {
			errs = multierror.Append(errs, fmt.Errorf("spec %s request %s", label, bothRepresentations))
		}

		if r.Response.hasBothRepresentations() {
			errs = multierror.Append(errs, fmt.Errorf("spec %s response %s", label, bothRepresentations))
		}
	}

	return errs.ErrorOrNil()
}

// ValidateDir validates the spec files matching pattern in fsys together with the files around them.
//
// On top of Validate it requires at least one spec file, every representation-ref to name a file in fsys,
// and every other file to be referenced by some spec. Paths listed in ignore are exempt from that last rule.
func ValidateDir(fsys afero.Fs, pattern string, ignore ...string) error {
	paths, err := Files(fsys, pattern)
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		if pattern == "" {
			pattern = DefaultPattern
		}
		return fmt.Errorf("expected to find spec files matching %s but found nothing", pattern)
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

	if err := records.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	known := map[string]bool{}
	for _, p := range paths {
		known[RefPath(p)] = true
	}
	for _, p := range ignore {
		known[RefPath(p)] = true
	}

	for _, r := range records {
		for _, b := range []*Body{r.Request, r.Response} {
			if b == nil || b.RepresentationRef == "" {
				continue
			}

			ref := RefPath(b.RepresentationRef)
			known[ref] = true

			if exists, _ := afero.Exists(fsys, ref); !exists {
				errs = multierror.Append(errs, fmt.Errorf("spec %s references nonexistent file %s", r.Name, b.RepresentationRef))
			}
		}
	}

	var orphans []string
	err = afero.Walk(fsys, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		p = RefPath(filepath.ToSlash(p))
		if !info.IsDir() && !known[p] {
			orphans = append(orphans, p)
		}

		return nil
	})
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to list files: %w", err))
	}

	if len(orphans) > 0 {
		errs = multierror.Append(errs, fmt.Errorf("%d file(s) are not referenced by any spec:\n    %s",
			len(orphans), strings.Join(orphans, "\n    ")))
	}

	return errs.ErrorOrNil()
}

// RefPath turns a representation-ref into a path relative to the spec root, without query or fragment.
func RefPath(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}

	return strings.TrimPrefix(path.Clean("/"+ref), "/")
}

const bothRepresentations = "declares both 'representation' and 'representation-ref'"

func (b *Body) hasRepresentation() bool {
	return b != nil && (b.RawRepresentation != nil || b.RepresentationRef != "")
}

func (b *Body) hasBothRepresentations() bool {
	return b != nil && b.RawRepresentation != nil && b.RepresentationRef != ""
}
