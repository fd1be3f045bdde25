package statements

import (
	"gensig/database"
	"gensig/generics"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gensig.statements")

func ParseStatements(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
	lines, err := syntax.ParseLines(parser, 0, true, func(parser *syntax.Parser) (database.Node, *syntax.Error) {
		statement, err := ParseStatement(parser)
		if err != nil {
			return nil, err
		}

		// Trailing comments
		_, _, err = syntax.ParseOptional(parser, ParseComment)
		if err != nil {
			return nil, err
		}

		return statement, nil
	})
	if err != nil {
		return nil, err
	}

	return lines, nil
}

func ParseStatement(parser *syntax.Parser) (database.Node, *syntax.Error) {
	return syntax.ParseCached(parser, func(p *syntax.Parser) (database.Node, *syntax.Error) {
		protocol, ok, err := syntax.ParseOptional(parser, ParseProtocolStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return protocol, nil
		}

		nominal, ok, err := syntax.ParseOptional(parser, ParseNominalStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return nominal, nil
		}

		extension, ok, err := syntax.ParseOptional(parser, ParseExtensionStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return extension, nil
		}

		typeAlias, ok, err := syntax.ParseOptional(parser, ParseTypeAliasStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return typeAlias, nil
		}

		function, ok, err := syntax.ParseOptional(parser, ParseFunctionStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return function, nil
		}

		signature, ok, err := syntax.ParseOptional(parser, ParseSignatureStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return signature, nil
		}

		check, ok, err := syntax.ParseOptional(parser, ParseCheckStatement)
		if err != nil {
			return nil, err
		}
		if ok {
			return check, nil
		}

		return nil, parser.Error("Expected statement")
	})
}

func ParseComments(parser *syntax.Parser) ([]string, *syntax.Error) {
	lines, err := syntax.ParseLines(parser, 0, true, ParseComment)
	if err != nil {
		return nil, err
	}

	return lines, nil
}

func ParseComment(parser *syntax.Parser) (string, *syntax.Error) {
	comment, err := parser.Token("Comment")
	if err != nil {
		return "", err
	}

	return comment, nil
}

// ParseBody parses the members of a declaration between braces.
func ParseBody(parser *syntax.Parser, parseMember syntax.ParseFunc[database.Node]) ([]database.Node, *syntax.Error) {
	_, err := parser.Token("LeftBrace", syntax.TokenConfig{
		Reason: "in this declaration's body",
	})
	if err != nil {
		return nil, err
	}

	members, err := syntax.ParseLines(parser, 0, true, func(parser *syntax.Parser) (database.Node, *syntax.Error) {
		member, err := parseMember(parser)
		if err != nil {
			return nil, err
		}

		_, _, err = syntax.ParseOptional(parser, ParseComment)
		if err != nil {
			return nil, err
		}

		return member, nil
	})
	if err != nil {
		return nil, err
	}

	// Comments after the last member
	_, err = ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("RightBrace")
	if err != nil {
		return nil, err
	}

	return members, nil
}

type InvalidInheritanceFact struct {
	Type gentypes.Type
}

func (fact InvalidInheritanceFact) String() string {
	return "cannot inherit from " + fact.Type.String()
}

type inheritance struct {
	protocols  []inherited[*gentypes.ProtocolDecl]
	classes    []inherited[*gentypes.Nominal]
	classBound bool
}

type inherited[T any] struct {
	node  database.Node
	value T
}

// resolveInheritance sorts an inheritance clause into protocols, classes
// and `AnyObject`.
func resolveInheritance(visitor *visit.Visitor, nodes []database.Node) inheritance {
	var result inheritance
	for _, node := range nodes {
		switch ty := visitor.ResolveType(node).(type) {
		case *gentypes.ProtocolType:
			result.protocols = append(result.protocols, inherited[*gentypes.ProtocolDecl]{node, ty.Decl})
		case *gentypes.Existential:
			for _, proto := range ty.Protocols {
				result.protocols = append(result.protocols, inherited[*gentypes.ProtocolDecl]{node, proto})
			}

			result.classBound = result.classBound || ty.ClassBound
		case *gentypes.Nominal:
			if !ty.IsClass() {
				database.SetFact(node, InvalidInheritanceFact{Type: ty})
				continue
			}

			result.classes = append(result.classes, inherited[*gentypes.Nominal]{node, ty})
		case *gentypes.ErrorType:
			// Already reported by name resolution
		default:
			database.SetFact(node, InvalidInheritanceFact{Type: ty})
		}
	}

	return result
}

// visitMembers visits the members of a declaration body; functions wait
// until the body's generic signature is known.
func visitMembers(visitor *visit.Visitor, members []database.Node) {
	for _, member := range members {
		if _, ok := member.(*FunctionNode); ok {
			continue
		}

		visitor.Visit(member)
	}
}

func visitFunctions(visitor *visit.Visitor, sig *generics.GenericSignature, members []database.Node) {
	visitor.Within(sig, func() {
		for _, member := range members {
			if function, ok := member.(*FunctionNode); ok {
				visitor.Visit(function)
			}
		}
	})
}
