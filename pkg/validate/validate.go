package validate

import (
	"fmt"
	"os"
	"strings"
)

// RequiredString validates that a string field is not empty
func RequiredString(value, field string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// PlainName validates that a value is a single path element, so it can be
// joined under a directory without escaping it.
func PlainName(value, field string) error {
	if err := RequiredString(value, field); err != nil {
		return err
	}
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return fmt.Errorf("invalid %s: %q must be a plain file name", field, value)
	}
	return nil
}

// Positive validates that a number is greater than zero
func Positive(value int64, field string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %d", field, value)
	}
	return nil
}

// Exists validates that path exists on disk. The returned error wraps the
// underlying *fs.PathError so errors.Is(err, fs.ErrNotExist) holds for a
// missing path.
func Exists(path, field string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s not found: %w", field, err)
	}
	return info, nil
}
