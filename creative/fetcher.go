package creative

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/signstack/creative-server/errortypes"
)

// Fetcher knows how to fetch raw creative documents by id.
//
// Implementations must be safe for concurrent access by multiple goroutines.
// Callers are expected to share a single instance as much as possible.
type Fetcher interface {
	// FetchCreative returns the raw document JSON for the given id, or a
	// NotFoundError when no such creative exists.
	//
	// The returned bytes can only be read from. They may not be written to.
	FetchCreative(ctx context.Context, id string) (json.RawMessage, error)
}

// NotFoundError is an error type to flag that an id was not found by the
// Fetcher, so callers can disentangle absence from infrastructure failures.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf(`Creative with ID="%s" not found.`, e.ID)
}

func (e NotFoundError) Code() int {
	return errortypes.NotFoundErrorCode
}

func (e NotFoundError) Severity() errortypes.Severity {
	return errortypes.SeverityFatal
}
