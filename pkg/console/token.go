package console

// Tokenize splits a frozen line on ASCII whitespace. Token 0 is the
// command name. Tokens are subslices of the line storage and become
// invalid once the assembler starts the next line.
func Tokenize(line []byte) [][]byte {
	var tokens [][]byte
	start := -1
	for i, c := range line {
		if c == ' ' || c == '\t' || c == '\v' || c == '\f' || c == '\r' || c == '\n' {
			if start >= 0 {
				tokens = append(tokens, line[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, line[start:])
	}
	return tokens
}
