package scpi

import (
	"fmt"
	"io"
)

// PrintDebugInfo dumps the parser configuration and registration tables:
// storage utilization against each capacity, every stored token, and every
// registered command code with its collision status. Codes equal to the
// unknown hash are flagged "!*", invalid (unreachable) registrations "!%",
// and duplicates of an earlier code "!!".
//
// The dump is meant for build-time verification of a command set; it never
// runs on the dispatch path.
func (p *Parser) PrintDebugInfo(w io.Writer) {
	fmt.Fprintf(w, "*** DEBUG INFO ***\n\n")
	fmt.Fprintf(w, "Max command tree branches: %d\n", p.cfg.ArraySize)
	if p.setupErrors.BranchOverflow {
		fmt.Fprintf(w, " **ERROR** Max branch size exceeded.\n")
	}
	fmt.Fprintf(w, "Max number of parameters: %d\n", p.cfg.ArraySize)
	fmt.Fprintf(w, "Message buffer size: %d\n\n", p.cfg.BufferLength)

	fmt.Fprintf(w, "TOKENS : %d / %d\n", p.tokens.Size(), p.cfg.MaxTokens)
	if p.setupErrors.TokenOverflow {
		fmt.Fprintf(w, " **ERROR** Max tokens exceeded.\n")
	}
	for i := 0; i < p.tokens.Size(); i++ {
		fmt.Fprintf(w, "  %d:\t%s\n", i+1, p.tokens.Get(i))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "VALID CODES : %d / %d\n", len(p.validCodes), p.cfg.MaxCommands)
	if p.setupErrors.CommandOverflow {
		fmt.Fprintf(w, " **ERROR** Max commands exceeded.\n")
	}
	printCodeTable(w, p.validCodes)

	if p.cfg.MaxSpecialCommands > 0 {
		fmt.Fprintf(w, "\nVALID SPECIAL CODES : %d / %d\n",
			len(p.validSpecialCodes), p.cfg.MaxSpecialCommands)
		if p.setupErrors.SpecialCommandOverflow {
			fmt.Fprintf(w, " **ERROR** Max special commands exceeded.\n")
		}
		printCodeTable(w, p.validSpecialCodes)
	}

	fmt.Fprintf(w, "\nHASH Configuration:\n")
	fmt.Fprintf(w, "  Hash magic number: %d\n", hashMagicNumber)
	fmt.Fprintf(w, "  Hash magic offset: %d\n", hashMagicOffset)
	fmt.Fprintf(w, "\n*******************\n")
}

func printCodeTable(w io.Writer, codes []Hash) {
	unknownError := false
	invalidError := false
	hashCrash := false
	fmt.Fprintf(w, "  #\tHash\n")
	for i, code := range codes {
		flag := ""
		switch {
		case code == unknownHash:
			flag = "!*"
			unknownError = true
		case code == invalidHash:
			flag = "!%"
			invalidError = true
		default:
			for j := 0; j < i; j++ {
				if codes[j] == code {
					flag = "!!"
					hashCrash = true
					break
				}
			}
		}
		fmt.Fprintf(w, "  %d:\t%X%s\n", i+1, uint16(code), flag)
	}
	if unknownError {
		fmt.Fprintf(w, " **ERROR** Tried to register unknown tokens. (!*)\n")
	}
	if invalidError {
		fmt.Fprintf(w, " **ERROR** Tried to register invalid commands. (!%%)\n")
	}
	if hashCrash {
		fmt.Fprintf(w, " **ERROR** Hash crashes found. (!!)\n")
	}
}
