package command

import "strings"

// Separator delimits the verb and arguments of a command line.
const Separator = ":"

// ParseResult holds the parsed verb and arguments from a command line.
type ParseResult struct {
	// Verb is the first token, trimmed and lowercased.
	Verb string
	// Args are the remaining tokens, each trimmed. Case is preserved.
	Args []string
	// Raw is the trimmed input line.
	Raw string
}

// Parse splits a command line on ':' into a verb and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Verb is empty and
// Args is nil.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	parts := strings.Split(line, Separator)
	res := ParseResult{
		Verb: strings.ToLower(strings.TrimSpace(parts[0])),
		Raw:  line,
	}
	if len(parts) > 1 {
		res.Args = make([]string, len(parts)-1)
		for i, p := range parts[1:] {
			res.Args[i] = strings.TrimSpace(p)
		}
	}
	return res
}
