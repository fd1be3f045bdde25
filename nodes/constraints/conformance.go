package constraints

import (
	"gensig/database"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

// ConformanceConstraintNode is `T: P`, where the constraint may also be a
// class, a composition or a layout.
type ConformanceConstraintNode struct {
	Subject    database.Node
	Constraint database.Node
	Facts      *database.Facts
}

func (node *ConformanceConstraintNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseConformanceConstraint(parser *syntax.Parser) (*ConformanceConstraintNode, *syntax.Error) {
	span := parser.Spanned()

	subject, err := types.ParseMemberType(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("ConformOperator")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this constraint")

	constraint, err := types.ParseType(parser)
	if err != nil {
		return nil, err
	}

	return &ConformanceConstraintNode{
		Subject:    subject,
		Constraint: constraint,
		Facts:      database.NewFacts(span()),
	}, nil
}

func (node *ConformanceConstraintNode) Visit(visitor *visit.Visitor) {
	visitConstraint(visitor, node)
}

func (node *ConformanceConstraintNode) Requirement() visit.RequirementRepr {
	return visit.RequirementRepr{
		Kind:       visit.ReprConstraint,
		Subject:    node.Subject,
		Constraint: node.Constraint,
		Node:       node,
	}
}
