package knowledge

// stripComments removes JSONC-style comments from a JSON string: // to end
// of line and /* ... */ blocks. Content inside JSON strings is preserved,
// including escape sequences.
func stripComments(text string) string {
	var out []byte
	var inString, escaped, inLine, inBlock bool

	for i := 0; i < len(text); i++ {
		ch := text[i]
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}

		switch {
		case inLine:
			if ch == '\n' {
				inLine = false
				out = append(out, ch)
			}
		case inBlock:
			if ch == '*' && next == '/' {
				inBlock = false
				i++
			}
		case inString:
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
		case ch == '"':
			inString = true
			escaped = false
			out = append(out, ch)
		case ch == '/' && next == '/':
			inLine = true
			i++
		case ch == '/' && next == '*':
			inBlock = true
			i++
		default:
			out = append(out, ch)
		}
	}

	return string(out)
}
