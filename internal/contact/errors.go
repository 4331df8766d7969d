package contact

import (
	"errors"
	"fmt"
)

// Error kinds. Field-level sentinels wrap their kind so callers can match
// either the specific cause or the broad category with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate contact")
	ErrNotFound   = errors.New("contact not found")
	ErrEmpty      = errors.New("no contacts")
	ErrIO         = errors.New("i/o failure")
)

var (
	ErrNameRequired = fmt.Errorf("%w: name required", ErrValidation)
	ErrInvalidPhone = fmt.Errorf("%w: phone needs at least %d digits", ErrValidation, MinPhoneDigits)
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	ErrDuplicateName  = fmt.Errorf("%w: name already exists", ErrDuplicate)
	ErrDuplicatePhone = fmt.Errorf("%w: phone already exists", ErrDuplicate)
)
