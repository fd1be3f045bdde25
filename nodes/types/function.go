package types

import (
	"gensig/database"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

type FunctionTypeNode struct {
	Inputs []database.Node
	Output database.Node
	Facts  *database.Facts
}

func (node *FunctionTypeNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseFunctionType(parser *syntax.Parser) (*FunctionTypeNode, *syntax.Error) {
	span := parser.Spanned()

	inputs, err := parseParenthesizedTypes(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("FunctionOperator")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this function type")

	output, err := ParseType(parser)
	if err != nil {
		return nil, err
	}

	return &FunctionTypeNode{
		Inputs: inputs,
		Output: output,
		Facts:  database.NewFacts(span()),
	}, nil
}

func (node *FunctionTypeNode) Visit(visitor *visit.Visitor) {
	visitor.ResolveType(node)
}

func (node *FunctionTypeNode) ResolveType(visitor *visit.Visitor) gentypes.Type {
	visitType(visitor, node)

	inputs := make([]gentypes.Type, 0, len(node.Inputs))
	for _, input := range node.Inputs {
		inputs = append(inputs, visitor.ResolveType(input))
	}

	return visitor.Ctx.Types.Function(inputs, visitor.ResolveType(node.Output))
}
