package types

import (
	"gensig/database"
	"gensig/syntax"
	"gensig/visit"
)

type IsTypeFact struct{}

func (fact IsTypeFact) String() string {
	return "is a type"
}

type MissingTypesFact int

func (fact MissingTypesFact) String() string {
	return "is missing types"
}

type ExtraTypeFact struct{}

func (fact ExtraTypeFact) String() string {
	return "is extra type"
}

func ParseType(parser *syntax.Parser) (database.Node, *syntax.Error) {
	return syntax.ParseCached(parser, func(p *syntax.Parser) (database.Node, *syntax.Error) {
		functionType, ok, err := syntax.ParseOptional(parser, ParseFunctionType)
		if err != nil {
			return nil, err
		}
		if ok {
			return functionType, nil
		}

		existentialType, ok, err := syntax.ParseOptional(parser, ParseExistentialType)
		if err != nil {
			return nil, err
		}
		if ok {
			return existentialType, nil
		}

		compositionType, ok, err := syntax.ParseOptional(parser, ParseCompositionType)
		if err != nil {
			return nil, err
		}
		if ok {
			return compositionType, nil
		}

		memberType, ok, err := syntax.ParseOptional(parser, ParseMemberType)
		if err != nil {
			return nil, err
		}
		if ok {
			return memberType, nil
		}

		return nil, parser.Error("Expected type")
	})
}

func ParseAtomicType(parser *syntax.Parser) (database.Node, *syntax.Error) {
	return syntax.ParseCached(parser, func(p *syntax.Parser) (database.Node, *syntax.Error) {
		namedType, ok, err := syntax.ParseOptional(parser, ParseNamedType)
		if err != nil {
			return nil, err
		}
		if ok {
			return namedType, nil
		}

		tupleType, ok, err := syntax.ParseOptional(parser, ParseTupleType)
		if err != nil {
			return nil, err
		}
		if ok {
			return tupleType, nil
		}

		return nil, parser.Error("Expected type")
	})
}

func ParseTypeArguments(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
	_, err := parser.Token("LeftAngle", syntax.TokenConfig{
		Reason: "in these generic arguments",
	})
	if err != nil {
		return nil, err
	}

	parser.ConsumeLineBreaks()

	arguments, err := syntax.ParseList(parser, 1, ParseType)
	if err != nil {
		return nil, err
	}

	parser.ConsumeLineBreaks()

	_, err = parser.Token("RightAngle")
	if err != nil {
		return nil, err
	}

	return arguments, nil
}

func visitType(visitor *visit.Visitor, node database.Node) {
	database.SetFact(node, IsTypeFact{})
}
