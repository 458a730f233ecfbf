package spec

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Fingerprint digests the spec files matching pattern into one API fingerprint.
//
// Files are visited in path order. Each contributes its path, its bytes, and then the request and response
// bodies of every record it holds, so editing a referenced file changes the fingerprint too.
func Fingerprint(fsys afero.Fs, pattern string, logger logrus.FieldLogger) (string, error) {
	paths, err := Files(fsys, pattern)
	if err != nil {
		return "", err
	}

	digest := md5.New()
	for _, p := range paths {
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", p, err)
		}
		logger.WithFields(logrus.Fields{"file": p, "md5": md5Hex(data)}).Debug("fingerprinting")

		io.WriteString(digest, "\nFILE:"+p+"\n")
		digest.Write(data)

		records, err := LoadFile(fsys, p)
		if err != nil {
			return "", err
		}

		for _, r := range records {
			for _, b := range []*Body{r.Request, r.Response} {
				body, ok, err := bodyData(fsys, b)
				if err != nil {
					return "", fmt.Errorf("spec %s: %w", r.Name, err)
				}
				if ok {
					digest.Write(body)
				}
			}
		}
	}

	fingerprint := hex.EncodeToString(digest.Sum(nil))
	logger.WithFields(logrus.Fields{"specs": len(paths), "fingerprint": fingerprint}).Info("API fingerprint")

	return fingerprint, nil
}

// bodyData returns the inline body, or else the referenced file's bytes.
func bodyData(fsys afero.Fs, b *Body) ([]byte, bool, error) {
	switch {
	case b == nil:
		return nil, false, nil
	case b.RawRepresentation != nil:
		return []byte(*b.RawRepresentation), true, nil
	case b.RepresentationRef != "":
		data, err := afero.ReadFile(fsys, RefPath(b.RepresentationRef))
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %s: %w", b.RepresentationRef, err)
		}
		return data, true, nil
	default:
		return nil, false, nil
	}
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
