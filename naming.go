package kinten

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tomo0108/kinten/internal/dateutil"
	"github.com/Tomo0108/kinten/internal/fileutil"
)

// outputNamer assigns output paths within one batch. Names handed out earlier
// in the batch count as taken even before their file exists.
type outputNamer struct {
	dir      string
	now      func() time.Time
	reserved map[string]bool
}

func newOutputNamer(dir string, now func() time.Time) *outputNamer {
	return &outputNamer{dir: dir, now: now, reserved: make(map[string]bool)}
}

// assign returns "<dir>/<stem>.pdf", or "<dir>/<stem>_<YYYYMMDD_HHMMSS>.pdf"
// when that is taken. Timestamps have second resolution, so two runs in the
// same second can still collide; that case is reported, never overwritten.
func (n *outputNamer) assign(input string) (string, error) {
	stem := documentStem(input)

	candidate := filepath.Join(n.dir, stem+".pdf")
	if !n.taken(candidate) {
		n.reserved[candidate] = true
		return candidate, nil
	}

	suffix, err := dateutil.Format(dateutil.SuffixFormat, n.now())
	if err != nil {
		return "", err
	}
	stamped := filepath.Join(n.dir, fmt.Sprintf("%s_%s.pdf", stem, suffix))
	if n.taken(stamped) {
		return "", fmt.Errorf("%w: %s", ErrOutputNameTaken, stamped)
	}
	n.reserved[stamped] = true
	return stamped, nil
}

func (n *outputNamer) taken(path string) bool {
	return n.reserved[path] || fileutil.PathExists(path)
}

// documentStem returns the base name of path without its extension.
func documentStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
