package statements

import (
	"gensig/database"
	"gensig/nodes/constraints"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

type FunctionParameterNode struct {
	Label string
	Name  string
	Type  database.Node
	Facts *database.Facts
}

func (node *FunctionParameterNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseFunctionParameter(parser *syntax.Parser) (*FunctionParameterNode, *syntax.Error) {
	span := parser.Spanned()

	label, err := syntax.ParseLabel(parser)
	if err != nil {
		return nil, err
	}

	name, _, err := syntax.ParseOptional(parser, func(parser *syntax.Parser) (string, *syntax.Error) {
		return parser.Token("Name", syntax.TokenConfig{Name: "a parameter name"})
	})
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = label
	}

	_, err = parser.Token("ConformOperator")
	if err != nil {
		return nil, err
	}

	ty, err := types.ParseType(parser)
	if err != nil {
		return nil, err
	}

	return &FunctionParameterNode{
		Label: label,
		Name:  name,
		Type:  ty,
		Facts: database.NewFacts(span()),
	}, nil
}

func (node *FunctionParameterNode) Visit(visitor *visit.Visitor) {
	visitor.ResolveType(node.Type)
}

type FunctionNode struct {
	Comments   []string
	Name       string
	Parameters []*types.TypeParameterNode
	Inputs     []*FunctionParameterNode
	Output     database.Node
	Where      []database.Node
	Facts      *database.Facts
}

func (node *FunctionNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseFunctionStatement(parser *syntax.Parser) (*FunctionNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("FuncKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this function")

	name, err := syntax.ParseFunctionName(parser)
	if err != nil {
		return nil, err
	}

	parameters, _, err := syntax.ParseOptional(parser, func(parser *syntax.Parser) ([]*types.TypeParameterNode, *syntax.Error) {
		parameters, _, err := types.ParseTypeParameters(parser, nil)
		return parameters, err
	})
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("LeftParenthesis", syntax.TokenConfig{
		Reason: "in this function's parameters",
	})
	if err != nil {
		return nil, err
	}

	parser.ConsumeLineBreaks()

	inputs, err := syntax.ParseList(parser, 0, ParseFunctionParameter)
	if err != nil {
		return nil, err
	}

	parser.ConsumeLineBreaks()

	_, err = parser.Token("RightParenthesis")
	if err != nil {
		return nil, err
	}

	output, _, err := syntax.ParseOptional(parser, func(parser *syntax.Parser) (database.Node, *syntax.Error) {
		_, err := parser.Token("FunctionOperator")
		if err != nil {
			return nil, err
		}

		return types.ParseType(parser)
	})
	if err != nil {
		return nil, err
	}

	where, _, err := syntax.ParseOptional(parser, constraints.ParseWhereClause)
	if err != nil {
		return nil, err
	}

	return &FunctionNode{
		Comments:   comments,
		Name:       name,
		Parameters: parameters,
		Inputs:     inputs,
		Output:     output,
		Where:      where,
		Facts:      database.NewFacts(span()),
	}, nil
}

func (node *FunctionNode) Visit(visitor *visit.Visitor) {
	visit.Defining(visitor, node, func() (*visit.FunctionDefinition, bool) {
		definition := &visit.FunctionDefinition{
			Name:     node.Name,
			Node:     node,
			Comments: node.Comments,
		}

		visitor.Define(node.Name, definition)

		visitor.AfterAllConformances(func() {
			visitor.PushScope()
			defer visitor.PopScope()

			params := types.DefineParameters(visitor, node.Parameters)

			var sources []database.Node
			for _, input := range node.Inputs {
				visitor.Visit(input)
				sources = append(sources, input.Type)
			}

			if node.Output != nil {
				sources = append(sources, node.Output)
			}

			result := visit.BuildSignature(visitor.Ctx, visit.Request{
				Params:  params,
				Where:   visit.RequirementReprs(node.Where),
				Outer:   visitor.OuterSignature(),
				Sources: sources,
				Kind:    visit.DeclFunction,
				Resolve: visitor.ResolveType,
			})

			for _, where := range node.Where {
				visitor.Visit(where)
			}

			database.SetFact(node, result.Fact())
			definition.Signature = result.Signature
		})

		return definition, true
	})
}
