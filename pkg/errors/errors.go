// Package errors defines the error kinds shared across subgrib.
package errors

import "fmt"

// Common error types.
var (
	// Configuration errors: rejected before any network access. The more
	// specific sentinels wrap ErrConfiguration so errors.Is matches the
	// broad kind as well.
	ErrConfiguration  = fmt.Errorf("invalid request configuration")
	ErrUnknownDataset = fmt.Errorf("no dataset for product/level/type combination: %w", ErrConfiguration)
	ErrOutputExists   = fmt.Errorf("output file already exists")

	// Retrieval errors.
	ErrRetrieval = fmt.Errorf("retrieval failed")

	// Conversion errors. A missing executable is a conversion failure too.
	ErrConversion       = fmt.Errorf("conversion failed")
	ErrConverterMissing = fmt.Errorf("converter executable not found: %w", ErrConversion)

	// Cache errors.
	ErrCacheDirectory = fmt.Errorf("invalid cache directory")
	ErrCacheEntry     = fmt.Errorf("unreadable cache entry")

	// Sidecar errors.
	ErrSidecar = fmt.Errorf("unreadable sidecar")

	// Config errors.
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")

	// Filesystem errors.
	ErrInvalidPath = fmt.Errorf("invalid path")
)

// RetrievalError is returned when an index or data fetch comes back with a
// non-success status. Offset/Length are zero for whole-resource fetches.
type RetrievalError struct {
	URL    string
	Offset int64
	Length int64
	Status int
}

func (e *RetrievalError) Error() string {
	if e.Length > 0 {
		return fmt.Sprintf("fetching %s (bytes %d-%d): HTTP %d",
			e.URL, e.Offset, e.Offset+e.Length-1, e.Status)
	}
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.Status)
}

// Unwrap makes RetrievalError match ErrRetrieval with errors.Is.
func (e *RetrievalError) Unwrap() error { return ErrRetrieval }

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
