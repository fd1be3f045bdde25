package types

import (
	"gensig/database"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

// ExistentialTypeNode is `any P & Q`, or a bare composition `P & Q` in a
// constraint.
type ExistentialTypeNode struct {
	Any     bool
	Members []database.Node
	Facts   *database.Facts
}

func (node *ExistentialTypeNode) GetFacts() *database.Facts {
	return node.Facts
}

func parseComposition(parser *syntax.Parser, min int) ([]database.Node, *syntax.Error) {
	many, err := syntax.ParseMany(parser, min, ParseMemberType, func(parser *syntax.Parser) (string, *syntax.Error) {
		return parser.Token("CompositionOperator")
	})
	if err != nil {
		return nil, err
	}

	members := make([]database.Node, 0, len(many))
	for _, item := range many {
		members = append(members, item.Value)
	}

	return members, nil
}

func ParseExistentialType(parser *syntax.Parser) (*ExistentialTypeNode, *syntax.Error) {
	span := parser.Spanned()

	_, err := parser.Token("AnyKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this existential type")

	members, err := parseComposition(parser, 1)
	if err != nil {
		return nil, err
	}

	return &ExistentialTypeNode{
		Any:     true,
		Members: members,
		Facts:   database.NewFacts(span()),
	}, nil
}

func ParseCompositionType(parser *syntax.Parser) (*ExistentialTypeNode, *syntax.Error) {
	span := parser.Spanned()

	members, err := parseComposition(parser, 2)
	if err != nil {
		return nil, err
	}

	return &ExistentialTypeNode{
		Any:     false,
		Members: members,
		Facts:   database.NewFacts(span()),
	}, nil
}

func (node *ExistentialTypeNode) Visit(visitor *visit.Visitor) {
	visitor.ResolveType(node)
}

func (node *ExistentialTypeNode) ResolveType(visitor *visit.Visitor) gentypes.Type {
	visitType(visitor, node)

	ctx := visitor.Ctx.Types

	var protocols []*gentypes.ProtocolDecl
	classBound := false
	valid := true
	for _, member := range node.Members {
		switch ty := visitor.ResolveType(member).(type) {
		case *gentypes.ProtocolType:
			protocols = append(protocols, ty.Decl)
		case *gentypes.Existential:
			protocols = append(protocols, ty.Protocols...)
			classBound = classBound || ty.ClassBound
		default:
			valid = false
		}
	}

	if !valid {
		return ctx.ErrorType()
	}

	return ctx.Existential(protocols, classBound)
}
