package scpi

// Hash is the integer fingerprint of a command token sequence. The range is
// deliberately small: collisions are possible by construction and dispatch
// resolves them first-registered-wins. PrintDebugInfo detects accidental
// collisions among registered commands.
type Hash uint16

const (
	// unknownHash is returned when a command contains an unregistered
	// keyword. No registered command can legitimately carry it.
	unknownHash Hash = 0
	// invalidHash is assigned to registrations that failed (overflow or
	// unknown tokens). Dispatch-time hashing of real input never produces
	// it, so such commands are permanently unreachable.
	invalidHash Hash = 1
)

const (
	// hashMagicNumber is the multiplier of the hashing step.
	hashMagicNumber Hash = 37
	// hashMagicOffset seeds the accumulator when hashing from the root of
	// the command tree.
	hashMagicOffset Hash = 7
)

// commandCode maps a tokenized command, under the current tree base, to its
// hash code. It returns unknownHash if any keyword fails to match a stored
// token, and invalidHash if the tree base itself is invalid.
//
// Each keyword matches a stored token either by short form (the token's
// leading uppercase run) or by long form (the full token), both
// case-insensitive. Tokens ending in '#' additionally match keywords with
// trailing digits in place of the marker. The first stored token that
// matches wins.
func (p *Parser) commandCode(commands *Commands) Hash {
	if p.treeCode == invalidHash {
		return invalidHash
	}
	var code Hash
	if p.treeCode == 0 {
		code = hashMagicOffset
	} else {
		code = p.treeCode
	}
	if commands.Size() == 0 {
		return unknownHash
	}
	// Loop all keywords in the command
	for i := 0; i < commands.Size(); i++ {
		header := commands.Get(i)
		headerLength := len(header)
		// For the last keyword remove the query symbol if needed
		isQuery := false
		if i == commands.Size()-1 {
			isQuery = header[headerLength-1] == '?'
			if isQuery {
				headerLength--
			}
		}

		matched := false
		for j := 0; j < p.tokens.Size(); j++ {
			token := p.tokens.Get(j)

			shortLength := 0
			for shortLength < len(token) && isUpper(token[shortLength]) {
				shortLength++
			}
			longLength := len(token)

			// If the token allows numeric suffixes remove the trailing
			// digits from the keyword. The shrunken header length is not
			// restored for later candidates; command codes depend on it.
			if token[longLength-1] == '#' &&
				(headerLength == 0 || header[headerLength-1] != '#') {
				longLength--
				for headerLength > 0 && isDigit(header[headerLength-1]) {
					headerLength--
				}
			}

			if headerLength == shortLength {
				if !equalShortForm(header[:headerLength], token) {
					continue
				}
			} else if headerLength == longLength {
				if !equalFold(header[:headerLength], token[:longLength]) {
					continue
				}
			} else {
				continue
			}

			// hash(i) = hash(i-1) * hash_magic_number + j
			code = code*hashMagicNumber + Hash(j)
			matched = true
			break
		}
		if !matched {
			return unknownHash
		}
		// A query is disambiguated from its non-query counterpart by one
		// extra hashing step.
		if isQuery {
			code = code*hashMagicNumber - 1
		}
	}
	return code
}

// equalShortForm compares a keyword against a token's short form. The short
// form is uppercase by construction, so only the keyword is folded.
func equalShortForm(header, token []byte) bool {
	for k := 0; k < len(header); k++ {
		if toUpper(header[k]) != token[k] {
			return false
		}
	}
	return true
}

// equalFold compares two equal-length byte slices case-insensitively.
func equalFold(a, b []byte) bool {
	for k := 0; k < len(a); k++ {
		if toUpper(a[k]) != toUpper(b[k]) {
			return false
		}
	}
	return true
}
