package constraints

import (
	"gensig/database"
	"gensig/syntax"
	"gensig/visit"
)

type IsConstraintFact struct{}

func (fact IsConstraintFact) String() string {
	return "is a constraint"
}

func ParseWhereClause(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
	_, err := parser.Token("WhereKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in these constraints")

	parser.ConsumeLineBreaks()

	return syntax.ParseList(parser, 1, ParseConstraint)
}

func ParseConstraint(parser *syntax.Parser) (database.Node, *syntax.Error) {
	return syntax.ParseCached(parser, func(p *syntax.Parser) (database.Node, *syntax.Error) {
		sameShapeConstraint, ok, err := syntax.ParseOptional(parser, ParseSameShapeConstraint)
		if err != nil {
			return nil, err
		}
		if ok {
			return sameShapeConstraint, nil
		}

		sameTypeConstraint, ok, err := syntax.ParseOptional(parser, ParseSameTypeConstraint)
		if err != nil {
			return nil, err
		}
		if ok {
			return sameTypeConstraint, nil
		}

		conformanceConstraint, ok, err := syntax.ParseOptional(parser, ParseConformanceConstraint)
		if err != nil {
			return nil, err
		}
		if ok {
			return conformanceConstraint, nil
		}

		return nil, parser.Error("Expected constraint")
	})
}

func visitConstraint(visitor *visit.Visitor, node database.Node) {
	database.SetFact(node, IsConstraintFact{})
}
