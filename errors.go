package dare

import (
	"github.com/jjbrophy47/dare/dataset"
)

// ModelError represents an error returned by the operations of a model.
type ModelError string

const (
	// ErrNotFitted is returned when using a model before fitting it.
	ErrNotFitted = ModelError("model is not fitted")
	// ErrUnknownInstance is returned when deleting an identifier the model
	// does not hold, or the same identifier twice in one call.
	ErrUnknownInstance = ModelError("unknown instance")
	// ErrDuplicateInstance is returned when adding an identifier the model
	// already holds.
	ErrDuplicateInstance = ModelError("duplicate instance")
	// ErrForestMember is returned when adding to, deleting from or fitting a
	// tree owned by a forest directly instead of through the forest.
	ErrForestMember = ModelError("tree is owned by a forest")
	// ErrInvalidConfig is returned when a configuration violates its constraints.
	ErrInvalidConfig = ModelError("invalid configuration")
)

// Errors of the input data, shared with the dataset package.
const (
	ErrShapeMismatch = dataset.ErrShapeMismatch
	ErrNonBinary     = dataset.ErrNonBinary
)

func (me ModelError) Error() string {
	return string(me)
}
