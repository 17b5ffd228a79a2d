package query

import "github.com/Aman-CERP/ftmodel/internal/errors"

var (
	// ErrFieldNotFound matches a predicate or sort on an undeclared field.
	ErrFieldNotFound = errors.Sentinel(errors.ErrCodeFieldNotFound)

	// ErrMultiSort matches a query carrying more than one sort.
	ErrMultiSort = errors.Sentinel(errors.ErrCodeMultiSort)

	// ErrInvalidSort matches a sort direction other than asc or desc.
	ErrInvalidSort = errors.Sentinel(errors.ErrCodeInvalidSort)

	// ErrInvalidQuery matches an unknown operator or a misused value.
	ErrInvalidQuery = errors.Sentinel(errors.ErrCodeInvalidQuery)

	// ErrDecode matches a malformed JSON payload in a search reply.
	ErrDecode = errors.Sentinel(errors.ErrCodeDecodeFailed)
)

func fieldNotFound(index, field string) error {
	return errors.Newf(errors.ErrCodeFieldNotFound, "field %s is not declared", field).
		WithDetail("index", index).
		WithDetail("field", field)
}
