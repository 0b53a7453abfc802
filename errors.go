package tsfile

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed, mirroring the distinct error
// kinds the caller needs to act differently on: retry at a different
// layer, surface to the user, or treat as a programming bug.
type Kind int

const (
	// KindIO covers short reads/writes and fsync failures from the FD
	// layer.
	KindIO Kind = iota
	// KindCorruption covers offset-residue mismatches, misaligned
	// footers, and block decodes that consumed a different length than
	// declared.
	KindCorruption
	// KindCodec covers compress/decompress failures from the external
	// codec.
	KindCodec
	// KindOutOfMemory covers allocation failures building a buffer.
	KindOutOfMemory
	// KindInvalidArgument covers invalid Reader/Writer configuration,
	// unsorted projection cids, and duplicate tombstones.
	KindInvalidArgument
	// KindPreconditionViolated covers out-of-order rows and uid == 0.
	KindPreconditionViolated
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IO"
	case KindCorruption:
		return "Corruption"
	case KindCodec:
		return "Codec"
	case KindOutOfMemory:
		return "OutOfMemory"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindPreconditionViolated:
		return "PreconditionViolated"
	default:
		return "Unknown"
	}
}

var (
	// ErrIO is the sentinel wrapped into every KindIO error.
	ErrIO = errors.New("tsfile: I/O error")
	// ErrCorruption is the sentinel wrapped into every KindCorruption
	// error.
	ErrCorruption = errors.New("tsfile: corruption")
	// ErrCodec is the sentinel wrapped into every KindCodec error.
	ErrCodec = errors.New("tsfile: codec error")
	// ErrOutOfMemory is the sentinel wrapped into every KindOutOfMemory
	// error.
	ErrOutOfMemory = errors.New("tsfile: out of memory")
	// ErrInvalidArgument is the sentinel wrapped into every
	// KindInvalidArgument error.
	ErrInvalidArgument = errors.New("tsfile: invalid argument")
	// ErrPreconditionViolated is the sentinel wrapped into every
	// KindPreconditionViolated error.
	ErrPreconditionViolated = errors.New("tsfile: precondition violated")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindIO:
		return ErrIO
	case KindCorruption:
		return ErrCorruption
	case KindCodec:
		return ErrCodec
	case KindOutOfMemory:
		return ErrOutOfMemory
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindPreconditionViolated:
		return ErrPreconditionViolated
	default:
		return ErrIO
	}
}

// wrapErr builds a Kind-tagged error wrapping both the kind's sentinel
// and the underlying cause, so callers can match with errors.Is against
// either.
func wrapErr(k Kind, context string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", sentinelFor(k), context)
	}
	return fmt.Errorf("%w: %s: %w", sentinelFor(k), context, cause)
}
