package variant

import "errors"

var (
	// ErrUnknownVariant indicates a tag that no variant of the family is registered under.
	ErrUnknownVariant = errors.New("variant: unknown variant")

	// ErrMissingTag indicates an encoded value without a type discriminator.
	ErrMissingTag = errors.New("variant: missing type tag")

	// ErrMalformed indicates an encoded value that is not a well-formed object.
	ErrMalformed = errors.New("variant: malformed payload")

	// ErrShortBuffer indicates the binary input ended before the value did.
	ErrShortBuffer = errors.New("variant: unexpected end of data")

	// ErrTrailingBytes indicates data left over after a complete value was decoded.
	ErrTrailingBytes = errors.New("variant: trailing bytes after value")
)
