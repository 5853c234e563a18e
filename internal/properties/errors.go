package properties

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by a Store when the raw key is absent.
	ErrKeyNotFound = errors.New("key not found")
	// ErrReadOnly is returned by every write through a Proxy.
	ErrReadOnly = errors.New("property store proxy is read-only")
	// ErrUnsaved is returned when properties are requested for an object
	// that has no id yet.
	ErrUnsaved = errors.New("object was not saved, so its information cannot be retrieved from the backend")
	// ErrNotFound matches any NotFoundError through errors.Is.
	ErrNotFound = &NotFoundError{}
)

// NotFoundError reports a property missing for one object. A missing
// PropertiesKey means the pipeline has produced nothing for the object yet.
type NotFoundError struct {
	Kind string
	ID   uint
	Key  string
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "document"
	}
	if e.NoInformation() {
		return fmt.Sprintf("Can't find information for %s with id %d", kind, e.ID)
	}
	return fmt.Sprintf("Can't find key %s for %s with id %d", e.Key, kind, e.ID)
}

// NoInformation is true when the listing of available properties is missing.
func (e *NotFoundError) NoInformation() bool {
	return e.Key == PropertiesKey
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
