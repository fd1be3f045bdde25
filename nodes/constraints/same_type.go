package constraints

import (
	"gensig/database"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

type SameTypeConstraintNode struct {
	Left  database.Node
	Right database.Node
	Facts *database.Facts
}

func (node *SameTypeConstraintNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseSameTypeConstraint(parser *syntax.Parser) (*SameTypeConstraintNode, *syntax.Error) {
	span := parser.Spanned()

	left, err := types.ParseType(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("SameTypeOperator")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this same-type constraint")

	right, err := types.ParseType(parser)
	if err != nil {
		return nil, err
	}

	return &SameTypeConstraintNode{
		Left:  left,
		Right: right,
		Facts: database.NewFacts(span()),
	}, nil
}

func (node *SameTypeConstraintNode) Visit(visitor *visit.Visitor) {
	visitConstraint(visitor, node)
}

func (node *SameTypeConstraintNode) Requirement() visit.RequirementRepr {
	return visit.RequirementRepr{
		Kind:       visit.ReprSameType,
		Subject:    node.Left,
		Constraint: node.Right,
		Node:       node,
	}
}

// SameShapeConstraintNode is `shape(A) == shape(B)` between two parameter
// packs.
type SameShapeConstraintNode struct {
	Left  database.Node
	Right database.Node
	Facts *database.Facts
}

func (node *SameShapeConstraintNode) GetFacts() *database.Facts {
	return node.Facts
}

func parseShape(parser *syntax.Parser) (database.Node, *syntax.Error) {
	_, err := parser.Token("ShapeKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this shape constraint")

	_, err = parser.Token("LeftParenthesis", syntax.TokenConfig{
		Reason: "between these parentheses",
	})
	if err != nil {
		return nil, err
	}

	pack, err := types.ParseMemberType(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("RightParenthesis")
	if err != nil {
		return nil, err
	}

	return pack, nil
}

func ParseSameShapeConstraint(parser *syntax.Parser) (*SameShapeConstraintNode, *syntax.Error) {
	span := parser.Spanned()

	left, err := parseShape(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("SameTypeOperator")
	if err != nil {
		return nil, err
	}

	right, err := parseShape(parser)
	if err != nil {
		return nil, err
	}

	return &SameShapeConstraintNode{
		Left:  left,
		Right: right,
		Facts: database.NewFacts(span()),
	}, nil
}

func (node *SameShapeConstraintNode) Visit(visitor *visit.Visitor) {
	visitConstraint(visitor, node)
}

func (node *SameShapeConstraintNode) Requirement() visit.RequirementRepr {
	return visit.RequirementRepr{
		Kind:       visit.ReprSameShape,
		Subject:    node.Left,
		Constraint: node.Right,
		Node:       node,
	}
}
