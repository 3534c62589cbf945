package registrar

import (
	"errors"
	"fmt"
)

var (
	// ErrAnnotationOutsideBlock marks an annotation used outside UserCommands.
	ErrAnnotationOutsideBlock = errors.New("annotation used outside a UserCommands block")

	// ErrMethodNotDefined is returned by Call for an unknown method.
	ErrMethodNotDefined = errors.New("method not defined")

	// ErrNilMethod is returned when defining or registering a nil handler.
	ErrNilMethod = errors.New("method cannot be nil")
)

// MisuseError is the panic value raised when an annotation is called
// outside an active registration block. It indicates a programming error
// in extension code.
type MisuseError struct {
	Owner      string
	Annotation string
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%s: %s(...) on %s", ErrAnnotationOutsideBlock, e.Annotation, e.Owner)
}

func (e *MisuseError) Unwrap() error { return ErrAnnotationOutsideBlock }
