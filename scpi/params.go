package scpi

import (
	"strconv"
	"strings"
)

// Parameter extraction helpers for command handlers. All of them consume
// the LAST parameter in the list (LIFO pop), so the first parameter on the
// wire is the last one extracted. They return ok=false when no parameter is
// left or the value does not convert; handlers decide whether that is a
// MissingOrInvalidParameter condition.

// PopString removes and returns the last parameter as a string.
func (p *Parameters) PopString() (string, bool) {
	value := p.Pop()
	if value == nil {
		return "", false
	}
	return string(value), true
}

// PopUint8 removes the last parameter and converts it to a uint8.
func (p *Parameters) PopUint8() (uint8, bool) {
	raw, ok := p.PopString()
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(value), true
}

// PopUint32 removes the last parameter and converts it to a uint32.
func (p *Parameters) PopUint32() (uint32, bool) {
	raw, ok := p.PopString()
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(value), true
}

// PopFloat removes the last parameter and converts it to a float64.
func (p *Parameters) PopFloat() (float64, bool) {
	raw, ok := p.PopString()
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// PopBool removes the last parameter and converts it to a bool.
// Accepted spellings are "ON"/"1" and "OFF"/"0", case-insensitive.
func (p *Parameters) PopBool() (bool, bool) {
	raw, ok := p.PopString()
	if !ok {
		return false, false
	}
	switch strings.ToUpper(raw) {
	case "ON", "1":
		return true, true
	case "OFF", "0":
		return false, true
	}
	return false, false
}

// Choice defines one option of a parameter that accepts a limited set of
// keywords. Stem is the abbreviated spelling, Stem+Suffix the full one,
// Tag the value a match maps to.
type Choice struct {
	Stem   string
	Suffix string
	Tag    int8
}

// PopChoice removes the last parameter and matches it against the options,
// comparing case-insensitively against each stem and each full spelling.
// It returns the tag of the first match.
func (p *Parameters) PopChoice(options []Choice) (int8, bool) {
	raw, ok := p.PopString()
	if !ok {
		return 0, false
	}
	for _, option := range options {
		if strings.EqualFold(raw, option.Stem) ||
			strings.EqualFold(raw, option.Stem+option.Suffix) {
			return option.Tag, true
		}
	}
	return 0, false
}

// ChoiceName maps a tag back to its full keyword spelling.
func ChoiceName(options []Choice, tag int8) (string, bool) {
	for _, option := range options {
		if option.Tag == tag {
			return option.Stem + option.Suffix, true
		}
	}
	return "", false
}
