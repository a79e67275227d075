package hyperband

import "fmt"

// Kind classifies the errors the core can surface. It is a closed set:
// spec-facing callers (the CLI) map each Kind to a distinct exit code.
type Kind int

const (
	// KindInvalidHeader marks a parse failure or semantic violation in an
	// ENVI header: a missing required key, an unknown interleave value, or
	// a malformed byte-order field.
	KindInvalidHeader Kind = iota + 1
	// KindHeaderMismatch marks disagreement between a header's declared
	// size and the backing file's actual length, or an unsupported
	// declared byte-order.
	KindHeaderMismatch
	// KindIO marks a failed read, write, seek, or mmap.
	KindIO
	// KindTruncatedFile marks a final partial read that did not contain a
	// whole number of elements.
	KindTruncatedFile
	// KindDimsMismatch marks a conversion or PCA-write output whose
	// declared dimensions are incompatible with its input.
	KindDimsMismatch
	// KindUnsupported marks a well-formed but unsupported request, such as
	// a non-little-endian source file.
	KindUnsupported
	// KindNumericFailure marks a non-converging eigendecomposition or a
	// non-finite value escaping a statistics kernel.
	KindNumericFailure
	// KindCancelled marks cooperative cancellation observed at a batch
	// boundary.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindInvalidHeader:
		return "InvalidHeader"
	case KindHeaderMismatch:
		return "HeaderMismatch"
	case KindIO:
		return "IoError"
	case KindTruncatedFile:
		return "TruncatedFile"
	case KindDimsMismatch:
		return "DimsMismatch"
	case KindUnsupported:
		return "Unsupported"
	case KindNumericFailure:
		return "NumericFailure"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the single error type the core returns. Callers distinguish
// failure modes by inspecting Kind, not by string-matching Error's message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind, so
// errors.Is(err, hyperband.ErrCancelled) and the other sentinels built by
// errKind below match any *Error of that Kind; errors.As recovers the full
// *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// errKind constructs a sentinel *Error carrying only a Kind, suitable as the
// target of errors.Is(err, hyperband.ErrCancelled) and friends.
func errKind(kind Kind) *Error { return &Error{Kind: kind} }

var (
	// ErrCancelled is the sentinel for errors.Is checks against cooperative
	// cancellation.
	ErrCancelled = errKind(KindCancelled)
	// ErrTruncatedFile is the sentinel for errors.Is checks against a short
	// final read that was not a whole number of elements.
	ErrTruncatedFile = errKind(KindTruncatedFile)
)
