package cricket

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// ErrValidationFailure marks documents that fail schema checks. Such
// documents are never partially written; the caller logs and moves on.
var ErrValidationFailure = crerr.New("document failed validation")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs the struct-tag schema checks on a document before it is
// handed to persistence.
func Validate(doc any) error {
	if err := validate.Struct(doc); err != nil {
		return crerr.Mark(crerr.Wrap(err, "schema check"), ErrValidationFailure)
	}
	return nil
}
