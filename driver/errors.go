package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when no paths are provided
	ErrNoPathsProvided = errors.New("sheetsql driver: no paths provided")

	// ErrNoFilesLoaded is returned when no sheets were loaded
	ErrNoFilesLoaded = errors.New("sheetsql driver: no sheets were loaded")

	// ErrInvalidDSN is returned when the DSN query string cannot be parsed
	ErrInvalidDSN = errors.New("sheetsql driver: invalid DSN")

	// ErrUnknownEngine is returned when the DSN names an unknown engine
	ErrUnknownEngine = errors.New("sheetsql driver: unknown engine")

	// ErrTxNotSupported is returned by Begin; data sources are read-only
	ErrTxNotSupported = errors.New("sheetsql driver: transactions are not supported")

	// ErrNamedArgsNotSupported is returned for sql.Named arguments
	ErrNamedArgsNotSupported = errors.New("sheetsql driver: named arguments are not supported")

	// ErrUnsupportedArgument is returned for argument types the engine cannot bind
	ErrUnsupportedArgument = errors.New("sheetsql driver: unsupported argument type")
)
