package types

import (
	"gensig/database"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

type TupleTypeNode struct {
	Elements []database.Node
	Facts    *database.Facts
}

func (node *TupleTypeNode) GetFacts() *database.Facts {
	return node.Facts
}

func parseParenthesizedTypes(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
	_, err := parser.Token("LeftParenthesis", syntax.TokenConfig{
		Reason: "between these parentheses",
	})
	if err != nil {
		return nil, err
	}

	parser.ConsumeLineBreaks()

	elements, err := syntax.ParseList(parser, 0, ParseType)
	if err != nil {
		return nil, err
	}

	parser.ConsumeLineBreaks()

	_, err = parser.Token("RightParenthesis")
	if err != nil {
		return nil, err
	}

	return elements, nil
}

// ParseTupleType parses `(A, B)`; `(A)` is just `A`.
func ParseTupleType(parser *syntax.Parser) (database.Node, *syntax.Error) {
	span := parser.Spanned()

	elements, err := parseParenthesizedTypes(parser)
	if err != nil {
		return nil, err
	}

	if len(elements) == 1 {
		database.SetSpanFact(elements[0], span())
		return elements[0], nil
	}

	return &TupleTypeNode{
		Elements: elements,
		Facts:    database.NewFacts(span()),
	}, nil
}

func (node *TupleTypeNode) Visit(visitor *visit.Visitor) {
	visitor.ResolveType(node)
}

func (node *TupleTypeNode) ResolveType(visitor *visit.Visitor) gentypes.Type {
	visitType(visitor, node)

	elements := make([]gentypes.Type, 0, len(node.Elements))
	for _, element := range node.Elements {
		elements = append(elements, visitor.ResolveType(element))
	}

	return visitor.Ctx.Types.Tuple(elements...)
}
