package statements

import (
	"reflect"
	"slices"

	"gensig/database"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

// CheckNode checks generic arguments against a declaration, as in
// `check f<Array<Int>>`.
type CheckNode struct {
	Name      string
	Arguments []database.Node
	Facts     *database.Facts
}

func (node *CheckNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseCheckStatement(parser *syntax.Parser) (*CheckNode, *syntax.Error) {
	span := parser.Spanned()

	_, err := parser.Token("CheckKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this check")

	name, err := syntax.ParseFunctionName(parser)
	if err != nil {
		return nil, err
	}

	arguments, _, err := syntax.ParseOptional(parser, types.ParseTypeArguments)
	if err != nil {
		return nil, err
	}

	return &CheckNode{
		Name:      name,
		Arguments: arguments,
		Facts:     database.NewFacts(span()),
	}, nil
}

var checkedDefinitions = []reflect.Type{
	reflect.TypeFor[*visit.FunctionDefinition](),
	reflect.TypeFor[*visit.NominalDefinition](),
}

func (node *CheckNode) Visit(visitor *visit.Visitor) {
	visitor.AfterAllSignatures(func() {
		definition, ok := visit.ResolveOf(visitor, node.Name, node, checkedDefinitions)
		if !ok {
			return
		}

		var fact visit.CheckFact
		switch definition := definition.(type) {
		case *visit.FunctionDefinition:
			fact.Signature = definition.Signature
		case *visit.NominalDefinition:
			fact.Signature = definition.Signature
		}

		if fact.Signature == nil {
			return
		}

		for _, argument := range node.Arguments {
			fact.Arguments = append(fact.Arguments, visitor.ResolveType(argument))
		}

		if len(fact.Arguments) != len(fact.Signature.Params()) {
			fact.Mismatch = true
			fact.Expected = len(fact.Signature.Params())
			database.SetFact(node, fact)
			return
		}

		subs := fact.Signature.SubstitutionMap(slices.Clone(fact.Arguments))
		fact.Result = fact.Signature.CheckGenericArguments(subs)

		log.Debugf("check %s%v: %v", node.Name, subs, fact.Result)

		database.SetFact(node, fact)
	})
}
