package kinten

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// verifyOutput checks that a backend actually produced a non-empty file.
func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyOutput, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyOutput, path)
	}
	return nil
}

// pageCount parses the PDF at path and returns its number of pages.
func pageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	return r.NumPage(), nil
}

// withPageCount appends the page count to msg when the PDF can be parsed.
// Some exporters write structures the parser does not understand; that is
// not a conversion failure.
func withPageCount(msg, path string) string {
	n, err := pageCount(path)
	if err != nil || n == 0 {
		return msg
	}
	if msg == "" {
		return fmt.Sprintf("%d page(s)", n)
	}
	return fmt.Sprintf("%s, %d page(s)", msg, n)
}
