package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that could address anything but a single
// file in an asset directory: empty names, separators and dots.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case strings.ContainsAny(name, `/\.`):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
