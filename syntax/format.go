package syntax

import "strings"

// Format a source file.
func Format(source string) (string, *Error) {
	tokens, err := Tokenize("", source)
	if err != nil {
		return "", err
	}

	var formatted strings.Builder

	deque := tokenDeque{tokens: tokens}

	// Only braces indent. Angle brackets, parentheses and square brackets
	// stay on one line.
	indent := 0

	// Whether to insert a space before the next token.
	pad := false

	newLine := func(count int) {
		for i := 0; i < count; i++ {
			formatted.WriteByte('\n')
		}

		for i := 0; i < indent; i++ {
			formatted.WriteString("  ")
		}

		pad = false
	}

	for token := deque.advance(); token != nil; token = deque.advance() {
		switch {
		case token.kind == "LineBreak":
			// Collapse multiple line breaks into at most one blank line
			count := 1
			if len(token.value) > 1 {
				count = 2
			}

			if next := deque.peek(); next != nil && next.kind == "RightBrace" {
				indent = max(indent-1, 0)
				count = 1
				formatted.WriteString(strings.Repeat("\n", count))
				formatted.WriteString(strings.Repeat("  ", indent))
				formatted.WriteByte('}')
				deque.advance()
				pad = true
				continue
			}

			newLine(count)
		case token.kind == "Comment":
			if pad {
				formatted.WriteByte(' ')
			}

			formatted.WriteString("//")
			formatted.WriteString(token.value)
			pad = true
		case token.kind == "LeftBrace":
			if pad {
				formatted.WriteByte(' ')
			}

			formatted.WriteByte('{')
			indent++

			if next := deque.peek(); next != nil && next.kind == "RightBrace" {
				indent--
				formatted.WriteByte('}')
				deque.advance()
				pad = true
			} else {
				pad = true
			}
		case token.kind == "RightBrace":
			indent = max(indent-1, 0)
			if pad {
				formatted.WriteByte(' ')
			}

			formatted.WriteByte('}')
			pad = true
		case token.kind == "Semicolon":
			formatted.WriteByte(';')
			pad = true
		case token.kind == "Comma", token.kind == "ConformOperator":
			formatted.WriteString(token.value)
			pad = true
		case TokenIsSpacedOperator(token.kind):
			formatted.WriteByte(' ')
			formatted.WriteString(token.value)
			pad = true
		case token.kind == "MemberOperator":
			formatted.WriteByte('.')
			pad = false
		case token.kind == "LeftAngle", token.kind == "LeftParenthesis", token.kind == "LeftBracket":
			// `f<T>`, `f(x)` and `T.[P]A` attach to the preceding name;
			// tuple types and the `signature` list keep their space
			if pad && !attaches(deque.previous(2)) {
				formatted.WriteByte(' ')
			}

			formatted.WriteString(token.value)
			pad = false
		case token.kind == "RightAngle", token.kind == "RightParenthesis":
			formatted.WriteString(token.value)
			pad = true
		case token.kind == "RightBracket":
			formatted.WriteByte(']')
			pad = false
		case TokenIsKeyword(token.kind), token.kind == "Name", token.kind == "CanonicalName":
			if pad {
				formatted.WriteByte(' ')
			}

			formatted.WriteString(token.value)
			pad = true
		default:
			panic("unknown token kind: " + token.kind)
		}
	}

	return strings.TrimSpace(formatted.String()), nil
}

// attaches reports whether an opening bracket directly follows token
// without a space.
func attaches(token *Token) bool {
	if token == nil {
		return false
	}

	switch token.kind {
	case "Name", "CanonicalName", "RightAngle", "MemberOperator", "ShapeKeyword":
		return true
	default:
		return false
	}
}

type tokenDeque struct {
	tokens []*Token
	index  int
}

func (d *tokenDeque) advance() *Token {
	if d.index >= len(d.tokens) {
		return nil
	}
	t := d.tokens[d.index]
	d.index++
	return t
}

func (d *tokenDeque) peek() *Token {
	if d.index >= len(d.tokens) {
		return nil
	}
	return d.tokens[d.index]
}

// previous returns the token `offset` positions behind the cursor; 1 is the
// token most recently advanced past.
func (d *tokenDeque) previous(offset int) *Token {
	if d.index-offset < 0 {
		return nil
	}
	return d.tokens[d.index-offset]
}
