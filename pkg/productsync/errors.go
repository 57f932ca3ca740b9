package productsync

import "errors"

// ErrClosed is returned by operations on a controller after Close.
var ErrClosed = errors.New("controller closed")

// User-facing messages. Failures collapse to one message per operation
// regardless of cause.
const (
	MsgRefreshFailed  = "Error fetching products, please try again."
	MsgSubmitFailed   = "Error adding product, please try again."
	MsgRemoveFailed   = "Error deleting product, please try again."
	MsgInvalidDraft   = "Please fill out all fields with valid data."
	MsgProductAdded   = "Product added!"
	MsgProductDeleted = "Product deleted successfully!"
)

// Op names a controller operation.
type Op string

// Operations.
const (
	OpRefresh Op = "refresh"
	OpSubmit  Op = "submit"
	OpRemove  Op = "remove"
)

// failureMessage returns the error state text for a failed operation.
func (op Op) failureMessage() string {
	switch op {
	case OpRefresh:
		return MsgRefreshFailed
	case OpSubmit:
		return MsgSubmitFailed
	default:
		return MsgRemoveFailed
	}
}

// OperationError reports a failed remote call. Err is whatever the service
// returned; callers are not expected to branch on it.
type OperationError struct {
	Op  Op
	Err error
}

func (e *OperationError) Error() string {
	return string(e.Op) + " failed: " + e.Err.Error()
}

func (e *OperationError) Unwrap() error { return e.Err }

// Message is the text shown to the user for this failure.
func (e *OperationError) Message() string { return e.Op.failureMessage() }
