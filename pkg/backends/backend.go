// Package backends holds the closed set of element stores: the local
// filesystem portfolio, the user's remote repository, and the shared
// community registry. All three are dispatched through one capability
// surface rather than open-ended plugin discovery.
package backends

import (
	"context"
	"fmt"

	"github.com/curio-cli/curio/pkg/models"
)

// Backend is the read surface every source implements.
type Backend interface {
	// Source returns the fixed identity of this backend.
	Source() models.Source

	// List returns index entries for every element of the given type, or
	// for all types when elementType is empty. Entries never carry content.
	List(ctx context.Context, elementType string) ([]models.IndexEntry, error)

	// Fetch returns the full serialized text of one element.
	Fetch(ctx context.Context, key models.ElementKey) (string, error)
}

// Writer is the additional surface of backends that accept writes. Only the
// local store and the remote repository are writable; the registry is not.
type Writer interface {
	// Write stores serialized element text and returns an opaque commit
	// reference where the backend produces one.
	Write(ctx context.Context, key models.ElementKey, content string) (string, error)

	// Delete removes one element.
	Delete(ctx context.Context, key models.ElementKey) error
}

// CredentialProvider supplies an opaque authenticated identity for remote
// calls. Acquisition mechanics live outside this core; failure here is an
// ordinary per-backend error subject to fallback-on-error.
type CredentialProvider func(ctx context.Context) (string, error)

// UnavailableError marks a backend as unreachable for this call: network,
// auth, or timeout. The search coordinator treats it per the active policy's
// fallbackOnError flag.
type UnavailableError struct {
	Backend models.Source
	Err     error

	statusCode int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Backend, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func unavailable(source models.Source, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Backend: source, Err: err}
}

// NotFoundError reports a key absent from a backend. It is distinct from
// unavailability: the backend answered, the element is not there.
type NotFoundError struct {
	Backend models.Source
	Key     models.ElementKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("element %s not found in %s", e.Key, e.Backend)
}
