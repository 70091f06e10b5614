package scpi

// StringArray is a fixed-capacity string container filled with Append
// (LIFO push) and drained with Pop (LIFO pop). Indexed reads are allowed
// without removing elements. Appending past the capacity sets Overflow and
// drops the value instead of growing the storage.
//
// Elements are byte slices aliasing the parser's message buffer; they are
// only valid until the next message is read.
type StringArray struct {
	values [][]byte
	size   int

	// Overflow is set when Append is called on a full array.
	Overflow bool
}

func newStringArray(capacity int) StringArray {
	return StringArray{values: make([][]byte, capacity)}
}

// Append pushes a value onto the array. On a full array it sets Overflow
// and drops the value.
func (a *StringArray) Append(value []byte) {
	a.Overflow = a.size >= len(a.values)
	if a.Overflow {
		return
	}
	a.values[a.size] = value
	a.size++
}

// Pop removes and returns the most recently appended value.
// It returns nil on an empty array.
func (a *StringArray) Pop() []byte {
	if a.size == 0 {
		return nil
	}
	a.size--
	return a.values[a.size]
}

// Get returns the value at index without removing it, or nil if the index
// is out of range.
func (a *StringArray) Get(index int) []byte {
	if index < 0 || index >= a.size {
		return nil
	}
	return a.values[index]
}

// First returns the oldest value in the array, or nil if empty.
func (a *StringArray) First() []byte {
	if a.size == 0 {
		return nil
	}
	return a.values[0]
}

// Last returns the newest value in the array, or nil if empty.
func (a *StringArray) Last() []byte {
	if a.size == 0 {
		return nil
	}
	return a.values[a.size-1]
}

// Size returns the number of values currently stored.
func (a *StringArray) Size() int {
	return a.size
}

func (a *StringArray) reset() {
	a.size = 0
	a.Overflow = false
}

// Commands holds the keyword tokens of a single command, in wire order.
// A trailing '?' on the last token marks a query; the tokenizer keeps it
// in place for the hashing step and the handlers to inspect.
type Commands struct {
	StringArray

	// NotProcessed is the remainder of the message after the first space
	// or tab: the parameter clause, still unparsed.
	NotProcessed []byte
}

// tokenize splits a message into colon-delimited keyword tokens.
// Leading whitespace is trimmed, tokenization stops at the first space or
// tab, and empty tokens (consecutive or leading colons) are skipped.
func (c *Commands) tokenize(message []byte) {
	c.reset()
	c.NotProcessed = nil

	start := 0
	for start < len(message) && isSpace(message[start]) {
		start++
	}
	message = message[start:]

	// Save parameters for later
	for i := 0; i < len(message); i++ {
		if message[i] == ' ' || message[i] == '\t' {
			c.NotProcessed = message[i+1:]
			message = message[:i]
			break
		}
	}

	// Split using ':'
	for len(message) > 0 {
		next := -1
		for i := 0; i < len(message); i++ {
			if message[i] == ':' {
				next = i
				break
			}
		}
		if next < 0 {
			c.Append(message)
			break
		}
		if next > 0 {
			c.Append(message[:next])
		}
		message = message[next+1:]
	}
}

// Parameters holds the parameter strings of a single command, in wire
// order. Handlers consume them with Pop, so the first parameter on the
// wire is the last one popped.
type Parameters struct {
	StringArray
}

// tokenize splits a parameter clause on ',' and trims surrounding
// whitespace from each piece. Quoted strings containing commas are not
// supported and are split like everything else.
func (p *Parameters) tokenize(message []byte) {
	p.reset()

	for len(message) > 0 {
		next := -1
		for i := 0; i < len(message); i++ {
			if message[i] == ',' {
				next = i
				break
			}
		}
		var piece []byte
		if next < 0 {
			piece = message
			message = nil
		} else {
			piece = message[:next]
			message = message[next+1:]
		}
		if len(piece) == 0 {
			continue
		}
		for len(piece) > 0 && isSpace(piece[0]) {
			piece = piece[1:]
		}
		for len(piece) > 0 && isSpace(piece[len(piece)-1]) {
			piece = piece[:len(piece)-1]
		}
		p.Append(piece)
	}
}

// isSpace checks if a byte is a whitespace character
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

// isUpper checks if a byte is an uppercase letter
func isUpper(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// isDigit checks if a byte is a decimal digit
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// toUpper converts a byte to uppercase
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
