package assets

import (
	"fmt"
	"unicode/utf8"
)

// Asset name and content bounds.
const (
	MaxAssetNameLength = 64
	MaxAssetSize       = 256 << 10
)

// assetKind is one category of asset: where its files live under the asset
// root and how a missing one is reported.
type assetKind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind  = assetKind{dir: stylesDirectory, ext: styleExtension, notFound: ErrStyleNotFound}
	scriptKind = assetKind{dir: scriptsDirectory, ext: scriptExtension, notFound: ErrScriptNotFound}
)

// path returns the slash-separated location of name relative to the asset
// root, after validating name.
func (k assetKind) path(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	return k.dir + "/" + name + k.ext, nil
}

// check rejects content that cannot be used as an asset of this kind.
func (k assetKind) check(name string, content []byte) error {
	if len(content) == 0 {
		return fmt.Errorf("%w: %s%s is empty", ErrInvalidAsset, name, k.ext)
	}
	if len(content) > MaxAssetSize {
		return fmt.Errorf("%w: %s%s is %d bytes (max %d)", ErrInvalidAsset, name, k.ext, len(content), MaxAssetSize)
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: %s%s is not UTF-8 text", ErrInvalidAsset, name, k.ext)
	}
	return nil
}

// ValidateAssetName accepts ASCII letters, digits, '-' and '_' only, so a
// name can never carry a separator, a dot or a drive letter.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}
