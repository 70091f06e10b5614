package scpi

// ErrorCode identifies the last error seen by the parser.
type ErrorCode uint8

const (
	// NoError means no error has occurred since the last time the
	// error slot was cleared.
	NoError ErrorCode = iota
	// UnknownCommand is set when a received command contains a keyword
	// that does not match any registered token.
	UnknownCommand
	// Timeout is set when a partial message is abandoned because no new
	// bytes arrived within the configured timeout.
	Timeout
	// BufferOverflow is set when a message exceeds the fixed buffer
	// length before a terminator is seen.
	BufferOverflow
	// MissingOrInvalidParameter is never set by the parser itself; it is
	// reserved for command handlers that validate parameter values.
	MissingOrInvalidParameter
)

func (e ErrorCode) String() string {
	switch e {
	case NoError:
		return "No Error"
	case UnknownCommand:
		return "Unknown command received"
	case Timeout:
		return "Communication timeout error"
	case BufferOverflow:
		return "Buffer overflow error"
	case MissingOrInvalidParameter:
		return "Missing or invalid parameter"
	}
	return "Unknown error"
}

// SetupErrors records registration-time failures. The flags are sticky:
// once set they stay set for the life of the parser. A parser with a setup
// error keeps running, but the affected registrations are unreachable.
// PrintDebugInfo reports them.
type SetupErrors struct {
	// CommandOverflow is set when RegisterCommand is called past the
	// command capacity, or a command path exceeds the branch capacity.
	CommandOverflow bool
	// TokenOverflow is set when a registration needs a new keyword but
	// the token storage is full.
	TokenOverflow bool
	// BranchOverflow is set when a tree base exceeds the branch capacity.
	BranchOverflow bool
	// SpecialCommandOverflow is set when RegisterSpecialCommand is called
	// past the special command capacity.
	SpecialCommandOverflow bool
}
