package statements

import (
	"gensig/database"
	"gensig/nodes/constraints"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

type ExtensionNode struct {
	Comments  []string
	Name      string
	Inherited []database.Node
	Where     []database.Node
	Members   []database.Node
	Facts     *database.Facts
}

func (node *ExtensionNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseExtensionStatement(parser *syntax.Parser) (*ExtensionNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("ExtensionKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this extension")

	name, err := syntax.ParseTypeName(parser)
	if err != nil {
		return nil, err
	}

	inherited, _, err := syntax.ParseOptional(parser, types.ParseInheritance)
	if err != nil {
		return nil, err
	}

	where, _, err := syntax.ParseOptional(parser, constraints.ParseWhereClause)
	if err != nil {
		return nil, err
	}

	members, _, err := syntax.ParseOptional(parser, func(parser *syntax.Parser) ([]database.Node, *syntax.Error) {
		return ParseBody(parser, parseTypeMember)
	})
	if err != nil {
		return nil, err
	}

	return &ExtensionNode{
		Comments:  comments,
		Name:      name,
		Inherited: inherited,
		Where:     where,
		Members:   members,
		Facts:     database.NewFacts(span()),
	}, nil
}

type NotExtendableFact struct{}

func (fact NotExtendableFact) String() string {
	return "cannot be extended"
}

func (node *ExtensionNode) Visit(visitor *visit.Visitor) {
	visitor.PushScope()
	defer visitor.PopScope()

	// The extended type may be declared later in the file
	visitor.AfterTypeDefinitions(func() {
		extended, ok := visit.Resolve[*visit.NominalDefinition](visitor, node.Name, node)
		if !ok {
			database.SetFact(node, NotExtendableFact{})
			return
		}

		decl := extended.Decl

		visitor.CurrentDefinition = &visit.CurrentDefinition{Node: node, Nominal: decl}

		for _, param := range decl.Params {
			visitor.Define(param.String(), &visit.TypeParameterDefinition{
				Name:  param.String(),
				Node:  extended.Node,
				Param: param,
			})
		}

		visitMembers(visitor, node.Members)

		var clause inheritance
		visitor.AfterTypeDefinitions(func() {
			clause = resolveInheritance(visitor, node.Inherited)
			for _, class := range clause.classes {
				database.SetFact(class.node, InvalidInheritanceFact{Type: class.value})
			}
		})

		if len(node.Where) == 0 {
			visitor.AfterAllDefinitions(func() {
				for _, proto := range clause.protocols {
					visitor.DeclareConformance(proto.node, decl, proto.value, nil)
				}
			})
		}

		visitor.AfterTypeSignatures(func() {
			outer := extended.Signature
			if outer == nil {
				outer = visitor.Ctx.Empty()
			}

			result := visit.BuildSignature(visitor.Ctx, visit.Request{
				Where:   visit.RequirementReprs(node.Where),
				Outer:   outer,
				Kind:    visit.DeclExtension,
				Resolve: visitor.ResolveType,
			})

			for _, where := range node.Where {
				visitor.Visit(where)
			}

			database.SetFact(node, result.Fact())

			if len(node.Where) > 0 {
				conditional := result.Signature.RequirementsNotSatisfiedBy(outer)
				for _, proto := range clause.protocols {
					visitor.DeclareConformance(proto.node, decl, proto.value, conditional)
				}
			}

			visitFunctions(visitor, result.Signature, node.Members)
		})
	})
}
