package spec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zerbitx/restspecs/encode"
)

// CatalogFormat selects how WriteCatalog lays out the collection.
type CatalogFormat string

const (
	// CatalogJSON is a plain JSON array of records, loadable with LoadFile.
	CatalogJSON CatalogFormat = "json"
	// CatalogAMD wraps the array in an AMD module for browser test runners.
	CatalogAMD CatalogFormat = "amd"
)

const amdHeader = "/*THIS FILE HAS BEEN AUTOMATICALLY GENERATED*/\n\ndefine(function() { return [\n\n"

// WriteCatalog writes every record of c, in collection order, as a single catalog.
func WriteCatalog(w io.Writer, c Collection, format CatalogFormat) error {
	switch format {
	case CatalogJSON, "":
		return encode.JSONIndented(c, w)
	case CatalogAMD:
	default:
		return fmt.Errorf("unknown catalog format %q", format)
	}

	if _, err := io.WriteString(w, amdHeader); err != nil {
		return err
	}

	for i, r := range c {
		out, err := json.MarshalIndent(r, "", " ")
		if err != nil {
			return fmt.Errorf("failed to encode spec %s: %w", r.Name, err)
		}

		if i > 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return err
			}
		}

		if _, err := w.Write(append(out, '\n')); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "];});\n")
	return err
}
