package kinten

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/xuri/excelize/v2"
)

// Document extensions accepted for conversion.
var supportedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
}

// IsSpreadsheet reports whether path has a supported spreadsheet extension.
func IsSpreadsheet(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Validation failures.
var (
	errNotRegular    = errors.New("not a regular file")
	errEmptyFile     = errors.New("file is empty")
	errTooLarge      = errors.New("file is too large")
	errExtension     = errors.New("unsupported extension")
	errNoSheets      = errors.New("workbook has no sheets")
	errNoWorkbookBin = errors.New("no workbook stream in compound file")
)

// validateDocument rejects inputs that cannot be converted: unreadable,
// empty, oversized, or not a spreadsheet this system understands.
func validateDocument(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errNotRegular
	}
	if info.Size() == 0 {
		return errEmptyFile
	}
	if info.Size() > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", errTooLarge, info.Size(), maxSize)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return validateOpenXML(path)
	case ".xls":
		return validateCompound(path)
	default:
		return fmt.Errorf("%w: %q", errExtension, filepath.Ext(path))
	}
}

// validateOpenXML opens an Office Open XML workbook and checks it has sheets.
func validateOpenXML(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("reading workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if len(f.GetSheetList()) == 0 {
		return errNoSheets
	}
	return nil
}

// validateCompound checks that a legacy .xls file is an OLE compound file
// carrying a BIFF workbook stream.
func validateCompound(path string) error {
	file, err := os.Open(path) // #nosec G304 -- caller-provided document path
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	doc, err := mscfb.New(file)
	if err != nil {
		return fmt.Errorf("reading compound file: %w", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "Workbook", "Book":
			return nil
		}
	}
	return errNoWorkbookBin
}
