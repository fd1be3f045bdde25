package syntax

import (
	"strings"

	"gensig/database"

	lex "github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type Token struct {
	kind  string
	value string
	span  database.Span
}

func (token *Token) Kind() string {
	return token.kind
}

func (token *Token) Value() string {
	return token.value
}

type tokenRule struct {
	kind          string
	pattern       string
	name          string
	skip          bool
	defaultReason string
	trim          func(s string) string
}

var rules = []tokenRule{
	{kind: "Space", pattern: `[ \t\r]+`, name: "", skip: true},
	{kind: "LineBreak", pattern: `\n+`, name: "a line break"},
	{kind: "Comment", pattern: `//[^\n]*`, name: "a comment", trim: func(s string) string { return s[2:] }},
	{kind: "FunctionOperator", pattern: `->`, name: "`->`"},
	{kind: "SameTypeOperator", pattern: `==`, name: "`==`"},
	{kind: "AssignOperator", pattern: `=`, name: "`=`"},
	{kind: "ConformOperator", pattern: `:`, name: "`:`"},
	{kind: "CompositionOperator", pattern: `&`, name: "`&`"},
	{kind: "MemberOperator", pattern: `\.`, name: "`.`"},
	{kind: "Semicolon", pattern: `;`, name: "`;`"},
	{kind: "Comma", pattern: `,`, name: "`,`"},
	{kind: "LeftAngle", pattern: `<`, name: "`<`", defaultReason: "in this parameter list"},
	{kind: "RightAngle", pattern: `>`, name: "`>`"},
	{kind: "LeftParenthesis", pattern: `\(`, name: "`(`"},
	{kind: "RightParenthesis", pattern: `\)`, name: "`)`"},
	{kind: "LeftBracket", pattern: `\[`, name: "`[`"},
	{kind: "RightBracket", pattern: `\]`, name: "`]`"},
	{kind: "LeftBrace", pattern: `\{`, name: "`{`"},
	{kind: "RightBrace", pattern: `\}`, name: "`}`"},
	{kind: "UnderscoreKeyword", pattern: `_`, name: "`_`"},
	{kind: "AnyKeyword", pattern: `any`, name: "`any`"},
	{kind: "AssociatedTypeKeyword", pattern: `associatedtype`, name: "`associatedtype`"},
	{kind: "CheckKeyword", pattern: `check`, name: "`check`"},
	{kind: "ClassKeyword", pattern: `class`, name: "`class`"},
	{kind: "EachKeyword", pattern: `each`, name: "`each`"},
	{kind: "EnumKeyword", pattern: `enum`, name: "`enum`"},
	{kind: "ExtensionKeyword", pattern: `extension`, name: "`extension`"},
	{kind: "FuncKeyword", pattern: `func`, name: "`func`"},
	{kind: "ProtocolKeyword", pattern: `protocol`, name: "`protocol`"},
	{kind: "ShapeKeyword", pattern: `shape`, name: "`shape`"},
	{kind: "SignatureKeyword", pattern: `signature`, name: "`signature`"},
	{kind: "StructKeyword", pattern: `struct`, name: "`struct`"},
	{kind: "TypeAliasKeyword", pattern: `typealias`, name: "`typealias`"},
	{kind: "WhereKeyword", pattern: `where`, name: "`where`"},
	{kind: "CanonicalName", pattern: `τ_[0-9]+_[0-9]+`, name: "a canonical parameter"},
	{kind: "Name", pattern: `[A-Za-z_][A-Za-z0-9_]*`, name: "a name"},
}

var lexer *lex.Lexer

var tokenIds = make(map[string]int, len(rules))
var tokenKinds = make([]string, 0, len(rules))

func token(name string, trim func(s string) string) lex.Action {
	return func(s *lex.Scanner, m *machines.Match) (any, error) {
		tokenString := string(m.Bytes)
		if trim != nil {
			tokenString = trim(tokenString)
		}

		return s.Token(tokenIds[name], tokenString, m), nil
	}
}

func skip(*lex.Scanner, *machines.Match) (any, error) {
	return nil, nil
}

var tokenNames = make(map[string]string, len(rules))
var defaultTokenReasons = make(map[string]string, len(rules))

func init() {
	lexer = lex.NewLexer()

	for _, rule := range rules {
		f := skip
		if !rule.skip {
			tokenIds[rule.kind] = len(tokenKinds)
			tokenKinds = append(tokenKinds, rule.kind)
			f = token(rule.kind, rule.trim)
		}

		lexer.Add([]byte(rule.pattern), f)
		tokenNames[rule.kind] = rule.name
		defaultTokenReasons[rule.kind] = rule.defaultReason
	}

	err := lexer.CompileNFA()
	if err != nil {
		panic(err)
	}
}

func Tokenize(path string, source string) ([]*Token, *Error) {
	scanner, err := lexer.Scanner([]byte(source))
	if err != nil {
		panic(err)
	}

	var tokens []*Token
	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		if err != nil {
			index := min(scanner.TC, len(source))
			end := min(index+1, len(source))
			location := locationOf(source, index)

			return nil, &Error{
				Message: "Unexpected character",
				Span: database.Span{
					Path:   path,
					Start:  location,
					End:    locationOf(source, end),
					Source: source[index:end],
				},
			}
		}

		token := tok.(*lex.Token)
		startIndex := token.TC
		endIndex := scanner.TC

		start := database.Location{
			Index:  startIndex,
			Line:   token.StartLine,
			Column: token.StartColumn,
		}

		end := database.Location{
			Index:  endIndex,
			Line:   token.EndLine,
			Column: token.EndColumn,
		}

		span := database.Span{
			Path:   path,
			Start:  start,
			End:    end,
			Source: source[startIndex:endIndex],
		}

		tokens = append(tokens, &Token{
			kind:  tokenKinds[token.Type],
			value: token.Value.(string),
			span:  span,
		})
	}

	return tokens, nil
}

func locationOf(source string, index int) database.Location {
	prefix := source[:index]
	line := strings.Count(prefix, "\n") + 1
	column := index - strings.LastIndex(prefix, "\n")

	return database.Location{Line: line, Column: column, Index: index}
}

func TokenIsKeyword(kind string) bool {
	return strings.HasSuffix(kind, "Keyword")
}

func TokenIsOperator(kind string) bool {
	return strings.HasSuffix(kind, "Operator")
}

// TokenIsSpacedOperator reports whether the formatter surrounds the operator
// with spaces.
func TokenIsSpacedOperator(kind string) bool {
	return kind == "FunctionOperator" || kind == "SameTypeOperator" || kind == "AssignOperator" || kind == "CompositionOperator"
}

func TokenIsOpening(kind string) bool {
	return strings.HasPrefix(kind, "Left")
}

func TokenIsClosing(kind string) bool {
	return strings.HasPrefix(kind, "Right")
}
