package statements

import (
	"gensig/database"
	"gensig/nodes/constraints"
	"gensig/nodes/types"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

// NominalNode declares a struct, enum or class.
type NominalNode struct {
	Comments   []string
	Kind       gentypes.NominalKind
	Name       string
	Parameters []*types.TypeParameterNode
	Inherited  []database.Node
	Where      []database.Node
	Members    []database.Node
	Facts      *database.Facts
}

func (node *NominalNode) GetFacts() *database.Facts {
	return node.Facts
}

func parseNominalKind(parser *syntax.Parser) (gentypes.NominalKind, *syntax.Error) {
	switch parser.Peek() {
	case "StructKeyword":
		_, err := parser.Token("StructKeyword")
		return gentypes.KindStruct, err
	case "EnumKeyword":
		_, err := parser.Token("EnumKeyword")
		return gentypes.KindEnum, err
	case "ClassKeyword":
		_, err := parser.Token("ClassKeyword")
		return gentypes.KindClass, err
	default:
		return 0, parser.Error("Expected `struct`, `enum` or `class`")
	}
}

func ParseNominalStatement(parser *syntax.Parser) (*NominalNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	kind, err := parseNominalKind(parser)
	if err != nil {
		return nil, err
	}

	parser.Commit("in this type declaration")

	name, err := syntax.ParseTypeName(parser)
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

	return &NominalNode{
		Comments:   comments,
		Kind:       kind,
		Name:       name,
		Parameters: parameters,
		Inherited:  inherited,
		Where:      where,
		Members:    members,
		Facts:      database.NewFacts(span()),
	}, nil
}

func parseTypeMember(parser *syntax.Parser) (database.Node, *syntax.Error) {
	typeAlias, ok, err := syntax.ParseOptional(parser, ParseTypeAliasStatement)
	if err != nil {
		return nil, err
	}
	if ok {
		return typeAlias, nil
	}

	function, ok, err := syntax.ParseOptional(parser, ParseFunctionStatement)
	if err != nil {
		return nil, err
	}
	if ok {
		return function, nil
	}

	return nil, parser.Error("Expected `typealias` or `func`")
}

func (node *NominalNode) Visit(visitor *visit.Visitor) {
	visit.Defining(visitor, node, func() (*visit.NominalDefinition, bool) {
		ctx := visitor.Ctx.Types

		names := make([]string, 0, len(node.Parameters))
		for _, parameter := range node.Parameters {
			names = append(names, parameter.Name)
		}

		decl := ctx.DeclareNominal(node.Kind, node.Name, names...)

		definition := &visit.NominalDefinition{
			Name:     node.Name,
			Node:     node,
			Comments: node.Comments,
			Decl:     decl,
		}

		visitor.Define(node.Name, definition)

		visitor.CurrentDefinition.Nominal = decl
		visitor.CurrentDefinition.Protocol = nil

		visitor.PushScope()
		defer visitor.PopScope()

		params := types.DefineParameters(visitor, node.Parameters)
		decl.Params = types.ParameterTypes(params, ctx)

		visitMembers(visitor, node.Members)

		visitor.AfterTypeDefinitions(func() {
			inheritance := resolveInheritance(visitor, node.Inherited)

			for i, class := range inheritance.classes {
				if i > 0 || node.Kind != gentypes.KindClass || class.value.Decl == decl {
					database.SetFact(class.node, InvalidInheritanceFact{Type: class.value})
					continue
				}

				decl.Superclass = class.value
			}

			visitor.AfterAllDefinitions(func() {
				for _, proto := range inheritance.protocols {
					visitor.DeclareConformance(proto.node, decl, proto.value, nil)
				}
			})
		})

		visitor.AfterAllRequirements(func() {
			result := visit.BuildSignature(visitor.Ctx, visit.Request{
				Params:  params,
				Where:   visit.RequirementReprs(node.Where),
				Kind:    visit.DeclType,
				Resolve: visitor.ResolveType,
			})

			for _, where := range node.Where {
				visitor.Visit(where)
			}

			database.SetFact(node, result.Fact())

			decl.Requirements = result.Signature.Canonical().Requirements()
			definition.Signature = result.Signature

			visitFunctions(visitor, result.Signature, node.Members)
		})

		return definition, true
	})
}
