package pyramid

import (
	"golang.org/x/xerrors"
)

// Sentinel errors for the three kinds of failure the codec can report.
// Callers can recover the kind with errors.Is against these values even
// after the message has been wrapped with positional context.
var (
	// ErrIO marks a failure from the underlying filesystem: open, read,
	// write, seek, rename, or delete.
	ErrIO = xerrors.New("i/o failure")

	// ErrArgument marks a failure caused by the caller: a missing,
	// duplicate, or invalid flag, or a file that does not exist.
	ErrArgument = xerrors.New("argument error")

	// ErrProtocol marks corruption discovered while decoding: an
	// out-of-range dictionary index, a length field that overruns the
	// chunk body, or trailing bytes left over once a layer is consumed.
	ErrProtocol = xerrors.New("protocol violation")
)

func ioErrorf(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrIO)...)
}

func argumentErrorf(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrArgument)...)
}

func protocolErrorf(format string, args ...interface{}) error {
	return xerrors.Errorf(format+": %w", append(args, ErrProtocol)...)
}
