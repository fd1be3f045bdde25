package types

import (
	"fmt"
	"strings"

	"gensig/database"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

// TypeParameterNode is a parameter in a generic parameter list, like
// `T: Sequence` or `each U`.
type TypeParameterNode struct {
	Name      string
	Pack      bool
	Inherited []database.Node
	Facts     *database.Facts
}

func (node *TypeParameterNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseTypeParameter(parser *syntax.Parser) (*TypeParameterNode, *syntax.Error) {
	span := parser.Spanned()

	_, pack, err := syntax.ParseOptional(parser, func(parser *syntax.Parser) (string, *syntax.Error) {
		return parser.Token("EachKeyword")
	})
	if err != nil {
		return nil, err
	}

	name, err := syntax.ParseTypeParameterName(parser)
	if err != nil {
		return nil, err
	}

	inherited, _, err := syntax.ParseOptional(parser, parseParameterConstraint)
	if err != nil {
		return nil, err
	}

	return &TypeParameterNode{
		Name:      name,
		Pack:      pack,
		Inherited: inherited,
		Facts:     database.NewFacts(span()),
	}, nil
}

// ParseTypeParameters parses the parameter list and the optional `where`
// clause written inside it, as in `signature <T where T: P>`.
func ParseTypeParameters(parser *syntax.Parser, parseWhere syntax.ParseFunc[[]database.Node]) ([]*TypeParameterNode, []database.Node, *syntax.Error) {
	_, err := parser.Token("LeftAngle")
	if err != nil {
		return nil, nil, err
	}

	parser.ConsumeLineBreaks()

	parameters, err := syntax.ParseList(parser, 0, ParseTypeParameter)
	if err != nil {
		return nil, nil, err
	}

	parser.ConsumeLineBreaks()

	var where []database.Node
	if parseWhere != nil {
		where, _, err = syntax.ParseOptional(parser, parseWhere)
		if err != nil {
			return nil, nil, err
		}

		parser.ConsumeLineBreaks()
	}

	_, err = parser.Token("RightAngle")
	if err != nil {
		return nil, nil, err
	}

	return parameters, where, nil
}

// A parameter takes a single constraint, since the comma separates
// parameters; `T: P & Q` composes protocols instead.
func parseParameterConstraint(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
	_, err := parser.Token("ConformOperator")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this parameter's constraint")

	constraint, err := ParseType(parser)
	if err != nil {
		return nil, err
	}

	return []database.Node{constraint}, nil
}

// ParseInheritance parses `: A, B` after a declaration's name.
func ParseInheritance(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
	_, err := parser.Token("ConformOperator")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this inheritance clause")

	return syntax.ParseList(parser, 1, ParseType)
}

// Type parameters are defined by their declaration; see DefineParameters.
func (node *TypeParameterNode) Visit(visitor *visit.Visitor) {
	visitType(visitor, node)
}

// DefineParameters puts a declaration's generic parameters in scope, one
// level deeper than the enclosing generic context.
func DefineParameters(visitor *visit.Visitor, nodes []*TypeParameterNode) []visit.ParamRepr {
	depth := visitor.NextDepth()

	params := make([]visit.ParamRepr, 0, len(nodes))
	for index, node := range nodes {
		visitor.Db.Register(node)
		visitType(visitor, node)

		repr := visit.ParamRepr{
			Name:      node.Name,
			Depth:     depth,
			Index:     index,
			IsPack:    node.Pack,
			Inherited: node.Inherited,
			Node:      node,
		}

		if d, i, ok := ParseCanonicalName(node.Name); ok {
			repr.Name = ""
			repr.Depth = d
			repr.Index = i
		}

		param := repr.Param(visitor.Ctx.Types)
		database.SetFact(node, visit.TypeFact{Type: param})

		visitor.Define(node.Name, &visit.TypeParameterDefinition{
			Name:  node.Name,
			Node:  node,
			Param: param,
		})

		for _, inherited := range node.Inherited {
			visitor.Db.Register(inherited)
		}

		params = append(params, repr)
	}

	return params
}

// ParseCanonicalName reads the depth and index out of a name like `τ_1_0`.
func ParseCanonicalName(name string) (int, int, bool) {
	if !strings.HasPrefix(name, "τ_") {
		return 0, 0, false
	}

	var depth, index int
	if _, err := fmt.Sscanf(strings.TrimPrefix(name, "τ_"), "%d_%d", &depth, &index); err != nil {
		return 0, 0, false
	}

	return depth, index, true
}

// ParameterTypes returns the parameters of a list of definitions, in order.
func ParameterTypes(params []visit.ParamRepr, ctx *gentypes.Context) []*gentypes.GenericTypeParam {
	result := make([]*gentypes.GenericTypeParam, 0, len(params))
	for _, param := range params {
		result = append(result, param.Param(ctx))
	}

	return result
}
