package scpi

import (
	"bytes"
	"io"
	"time"
)

// Handler is a command callback. It receives the parsed keyword tokens and
// parameter strings, both read-only and valid only for the duration of the
// call, and writes any textual reply to w.
type Handler func(commands *Commands, parameters *Parameters, w io.Writer)

// SpecialHandler is the callback type for special commands, which take no
// parameters.
type SpecialHandler func(commands *Commands, w io.Writer)

// Config holds the fixed storage sizes and framing settings of a Parser.
// Zero values select the defaults.
type Config struct {
	// MaxTokens is the capacity of the keyword token storage (default 20).
	MaxTokens int
	// MaxCommands is the capacity of the command registry (default 20).
	MaxCommands int
	// MaxSpecialCommands is the capacity of the special command registry.
	// Special command matching is disabled when zero (the default).
	MaxSpecialCommands int
	// BufferLength is the size of the message buffer in bytes (default 64).
	// A message, terminator included, must be shorter than this.
	BufferLength int
	// ArraySize bounds the command tree depth and the parameter count per
	// command (default 6).
	ArraySize int
	// Timeout is the inactivity timeout for a partial message (default 10ms).
	Timeout time.Duration
	// Terminator is the message terminator sequence (default "\n").
	Terminator string
	// Clock supplies the current time for timeout checks (default time.Now).
	Clock func() time.Time
}

func (c *Config) applyDefaults() {
	if c.MaxTokens == 0 {
		c.MaxTokens = 20
	}
	if c.MaxCommands == 0 {
		c.MaxCommands = 20
	}
	if c.BufferLength == 0 {
		c.BufferLength = 64
	}
	if c.ArraySize == 0 {
		c.ArraySize = 6
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Millisecond
	}
	if c.Terminator == "" {
		c.Terminator = "\n"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// Parser is a SCPI command parser and dispatcher over a byte stream.
//
// All storage is allocated once at construction: the message buffer, the
// token storage and the command registry never grow. The registry is
// populated during setup with RegisterCommand and immutable afterwards.
// Incoming messages are assembled by polling ProcessInput; a complete
// message is tokenized, hashed and dispatched to the registered handler.
//
// A Parser assumes a single execution context. None of its methods may be
// called concurrently, and Execute must not be re-entered from a handler.
type Parser struct {
	cfg        Config
	terminator []byte

	tokens tokenStore

	validCodes []Hash
	callers    []Handler

	validSpecialCodes []Hash
	specialCallers    []SpecialHandler

	errorHandler Handler

	// Tree base used when calculating hashes (0 for root). Affects
	// registrations made after SetCommandTreeBase, never existing ones.
	treeCode   Hash
	treeLength int

	msgBuffer    []byte
	msgLength    int
	lastActivity time.Time

	// Reused per message; they alias msgBuffer between polls.
	commands   Commands
	parameters Parameters

	setupErrors SetupErrors

	// LastError holds the most recent error code. The parser sets it on
	// dispatch and framing errors; handlers may set it when validating
	// parameters and clear it when reporting it.
	LastError ErrorCode
}

// New creates a Parser with the given configuration. The error handler
// defaults to a no-op; replace it with SetErrorHandler.
func New(cfg Config) *Parser {
	cfg.applyDefaults()
	p := &Parser{
		cfg:          cfg,
		terminator:   []byte(cfg.Terminator),
		tokens:       newTokenStore(cfg.MaxTokens),
		validCodes:   make([]Hash, 0, cfg.MaxCommands),
		callers:      make([]Handler, 0, cfg.MaxCommands),
		msgBuffer:    make([]byte, cfg.BufferLength),
		errorHandler: func(*Commands, *Parameters, io.Writer) {},
	}
	if cfg.MaxSpecialCommands > 0 {
		p.validSpecialCodes = make([]Hash, 0, cfg.MaxSpecialCommands)
		p.specialCallers = make([]SpecialHandler, 0, cfg.MaxSpecialCommands)
	}
	p.commands.StringArray = newStringArray(cfg.ArraySize)
	p.parameters.StringArray = newStringArray(cfg.ArraySize)
	return p
}

// SetupErrors returns the sticky registration-time error flags.
func (p *Parser) SetupErrors() SetupErrors {
	return p.setupErrors
}

func (p *Parser) addToken(token []byte) {
	if !p.tokens.Add(token) {
		p.setupErrors.TokenOverflow = true
	}
}

// SetCommandTreeBase changes the tree base used for subsequent
// RegisterCommand calls. The base is a colon-separated keyword path, e.g.
// "SYSTem:COMMunication"; an empty string resets to the root. Commands
// already registered keep their codes.
func (p *Parser) SetCommandTreeBase(treeBase string) {
	scratch := []byte(treeBase)
	p.commands.tokenize(scratch)
	if p.commands.Size() == 0 {
		p.treeCode = 0
		p.treeLength = 0
		return
	}
	for i := 0; i < p.commands.Size(); i++ {
		p.addToken(p.commands.Get(i))
	}
	p.treeCode = 0
	p.treeCode = p.commandCode(&p.commands)
	p.treeLength = p.commands.Size()
	if p.commands.Overflow {
		p.setupErrors.BranchOverflow = true
		p.treeCode = invalidHash
	}
}

// RegisterCommand registers a command path under the current tree base and
// binds handler to it. A trailing '?' marks a query command, hashed apart
// from its non-query counterpart.
//
// Registration never fails loudly: on storage overflow or an invalid tree
// base the command is stored with a code dispatch can never produce,
// leaving it unreachable. Such configuration bugs are surfaced by
// PrintDebugInfo and the SetupErrors flags.
func (p *Parser) RegisterCommand(command string, handler Handler) {
	if len(p.validCodes) >= p.cfg.MaxCommands {
		p.setupErrors.CommandOverflow = true
		return
	}
	scratch := []byte(command)
	p.commands.tokenize(scratch)
	for i := 0; i < p.commands.Size(); i++ {
		p.addToken(p.commands.Get(i))
	}
	code := p.commandCode(&p.commands)

	// Check for errors
	if code == unknownHash {
		code = invalidHash
	}
	overflow := p.commands.Overflow ||
		p.treeLength+p.commands.Size() > p.cfg.ArraySize
	if overflow {
		p.setupErrors.CommandOverflow = true
		code = invalidHash
	}

	p.validCodes = append(p.validCodes, code)
	p.callers = append(p.callers, handler)
}

// RegisterSpecialCommand registers a parameter-less command matched against
// the first word of the message buffer, before ordinary parsing. It is only
// useful when Config.MaxSpecialCommands is nonzero.
func (p *Parser) RegisterSpecialCommand(command string, handler SpecialHandler) {
	if len(p.validSpecialCodes) >= p.cfg.MaxSpecialCommands {
		p.setupErrors.SpecialCommandOverflow = true
		return
	}
	scratch := []byte(command)
	p.commands.tokenize(scratch)
	for i := 0; i < p.commands.Size(); i++ {
		p.addToken(p.commands.Get(i))
	}
	code := p.commandCode(&p.commands)

	if code == unknownHash {
		code = invalidHash
	}
	overflow := p.commands.Overflow ||
		p.treeLength+p.commands.Size() > p.cfg.ArraySize
	if overflow {
		p.setupErrors.BranchOverflow = true
		code = invalidHash
	}

	p.validSpecialCodes = append(p.validSpecialCodes, code)
	p.specialCallers = append(p.specialCallers, handler)
}

// SetErrorHandler sets the handler invoked on UnknownCommand, Timeout and
// BufferOverflow errors. On framing errors it is called with empty command
// and parameter sequences.
func (p *Parser) SetErrorHandler(handler Handler) {
	if handler == nil {
		handler = func(*Commands, *Parameters, io.Writer) {}
	}
	p.errorHandler = handler
}

// Execute parses a message and dispatches it. Multiple commands separated
// by ';' are handled independently, left to right. Commands whose keywords
// all match known tokens but whose code was never registered are dropped
// silently; reporting them would let hash collisions misfire the error
// handler.
func (p *Parser) Execute(message []byte, w io.Writer) {
	for message != nil {
		// Save multicommands for later
		var remaining []byte
		if i := bytes.IndexByte(message, ';'); i >= 0 {
			remaining = message[i+1:]
			message = message[:i]
		}

		p.treeCode = 0
		p.commands.tokenize(message)
		message = remaining
		p.parameters.tokenize(p.commands.NotProcessed)
		code := p.commandCode(&p.commands)
		if code == unknownHash {
			p.LastError = UnknownCommand
			p.errorHandler(&p.commands, &p.parameters, w)
			continue
		}
		for i := 0; i < len(p.validCodes); i++ {
			if p.validCodes[i] == code {
				// First registration wins on collision.
				p.callers[i](&p.commands, &p.parameters, w)
				break
			}
		}
	}
}

// ProcessInput polls the stream for message bytes and executes a command
// once a complete message has arrived. It never blocks; call it once per
// main-loop iteration.
func (p *Parser) ProcessInput(s Stream) {
	message := p.GetMessage(s)
	if message != nil {
		p.Execute(message, s)
	}
}

// GetMessage consumes the bytes currently available on the stream and
// returns a complete message with the terminator stripped, or nil if none
// is ready. The returned slice aliases the internal buffer and is only
// valid until the next call.
//
// Overflowing the buffer or exceeding the inactivity timeout abandons the
// partial message, sets LastError and invokes the error handler with empty
// sequences.
func (p *Parser) GetMessage(s Stream) []byte {
	for s.Available() > 0 {
		b, err := s.ReadByte()
		if err != nil {
			break
		}
		p.msgBuffer[p.msgLength] = b
		p.msgLength++
		p.lastActivity = p.cfg.Clock()

		if p.msgLength >= p.cfg.BufferLength {
			p.LastError = BufferOverflow
			p.commands.tokenize(nil)
			p.parameters.tokenize(nil)
			p.errorHandler(&p.commands, &p.parameters, s)
			p.msgLength = 0
			return nil
		}

		if p.cfg.MaxSpecialCommands > 0 && b == ' ' &&
			bytes.IndexByte(p.msgBuffer[:p.msgLength-1], ' ') < 0 {
			// First space of the message: try the special commands.
			line := p.msgBuffer[:p.msgLength-1]
			p.treeCode = 0
			p.commands.tokenize(line)
			code := p.commandCode(&p.commands)
			for i := 0; i < len(p.validSpecialCodes); i++ {
				if p.validSpecialCodes[i] == code {
					p.specialCallers[i](&p.commands, s)
					p.msgLength = 0
					return line
				}
			}
			// No match: the buffer is untouched, ordinary accumulation
			// continues.
		}

		// Test for termination chars (end of the message)
		if bytes.HasSuffix(p.msgBuffer[:p.msgLength], p.terminator) {
			message := p.msgBuffer[:p.msgLength-len(p.terminator)]
			p.msgLength = 0
			return message
		}
	}
	// No more bytes available yet

	if p.msgLength == 0 {
		return nil
	}

	// Check for communication timeout
	if p.cfg.Clock().Sub(p.lastActivity) > p.cfg.Timeout {
		p.LastError = Timeout
		p.commands.tokenize(nil)
		p.parameters.tokenize(nil)
		p.errorHandler(&p.commands, &p.parameters, s)
		p.msgLength = 0
	}

	return nil
}
