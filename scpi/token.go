package scpi

import "bytes"

// tokenStore is the append-only registry of known command keywords.
// Tokens are stored case-preserving: the leading run of uppercase letters
// is the keyword's short form, the full string its long form. A trailing
// '#' marks a keyword that accepts a numeric suffix ("CHANnel#" matches
// "CHANNEL1", "CHANNEL2", ...).
//
// Tokens are never removed; iteration order is insertion order.
type tokenStore struct {
	tokens [][]byte
	size   int
}

func newTokenStore(capacity int) tokenStore {
	return tokenStore{tokens: make([][]byte, capacity)}
}

// Add inserts a token, stripping a trailing query symbol first. Inserting
// a token that is already stored is a no-op. Add returns false when the
// store is full and the token was dropped.
func (s *tokenStore) Add(token []byte) bool {
	if s.size >= len(s.tokens) {
		return false
	}
	if len(token) == 0 {
		return true
	}
	// Remove query symbols
	if token[len(token)-1] == '?' {
		token = token[:len(token)-1]
	}
	for i := 0; i < s.size; i++ {
		// Check if the token is already added
		if bytes.Equal(token, s.tokens[i]) {
			return true
		}
	}
	stored := make([]byte, len(token))
	copy(stored, token)
	s.tokens[s.size] = stored
	s.size++
	return true
}

// Get returns the token at index, or nil if out of range.
func (s *tokenStore) Get(index int) []byte {
	if index < 0 || index >= s.size {
		return nil
	}
	return s.tokens[index]
}

// Size returns the number of stored tokens.
func (s *tokenStore) Size() int {
	return s.size
}
