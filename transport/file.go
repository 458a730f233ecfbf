package transport

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// File reads references from a filesystem. Query strings and fragments on the reference are ignored.
type File struct {
	fs     afero.Fs
	logger logrus.FieldLogger
}

// NewFile returns a transport reading from fs.
func NewFile(fs afero.Fs, logger logrus.FieldLogger) *File {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &File{fs: fs, logger: logger}
}

// NewDir returns a transport reading below dir on the OS filesystem.
func NewDir(dir string, logger logrus.FieldLogger) *File {
	return NewFile(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

// Fetch reads the file named by req.URL.
func (t *File) Fetch(req *Request) {
	name := req.URL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	data, err := afero.ReadFile(t.fs, name)
	if err != nil {
		t.logger.WithError(err).WithField("file", name).Warn("failed to read reference")
		return
	}

	req.succeed(string(data), http.StatusOK, http.Header{})
}
