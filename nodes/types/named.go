package types

import (
	"reflect"

	"gensig/database"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

type NamedTypeNode struct {
	Name      string
	Arguments []database.Node
	Facts     *database.Facts
}

func (node *NamedTypeNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseNamedType(parser *syntax.Parser) (*NamedTypeNode, *syntax.Error) {
	span := parser.Spanned()

	name, err := syntax.ParseTypeParameterName(parser)
	if err != nil {
		return nil, err
	}

	arguments, _, err := syntax.ParseOptional(parser, ParseTypeArguments)
	if err != nil {
		return nil, err
	}

	return &NamedTypeNode{
		Name:      name,
		Arguments: arguments,
		Facts:     database.NewFacts(span()),
	}, nil
}

// LayoutName lets `T: _Trivial` name a layout constraint.
func (node *NamedTypeNode) LayoutName() (string, bool) {
	return node.Name, len(node.Arguments) == 0
}

func (node *NamedTypeNode) Visit(visitor *visit.Visitor) {
	visitor.ResolveType(node)
}

var namedTypeDefinitions = []reflect.Type{
	reflect.TypeFor[*visit.TypeParameterDefinition](),
	reflect.TypeFor[*visit.NominalDefinition](),
	reflect.TypeFor[*visit.ProtocolDefinition](),
	reflect.TypeFor[*visit.TypeAliasDefinition](),
	reflect.TypeFor[*visit.AssociatedTypeDefinition](),
	reflect.TypeFor[*visit.BuiltinDefinition](),
}

func (node *NamedTypeNode) ResolveType(visitor *visit.Visitor) gentypes.Type {
	visitType(visitor, node)

	ctx := visitor.Ctx.Types

	arguments := make([]gentypes.Type, 0, len(node.Arguments))
	for _, argument := range node.Arguments {
		arguments = append(arguments, visitor.ResolveType(argument))
	}

	definition, ok := visit.ResolveOf(visitor, node.Name, node, namedTypeDefinitions)
	if !ok {
		return ctx.ErrorType()
	}

	if nominal, ok := definition.(*visit.NominalDefinition); ok {
		return node.resolveNominal(visitor, nominal.Decl, arguments)
	}

	if len(node.Arguments) > 0 {
		for _, extra := range node.Arguments {
			database.SetFact(extra, ExtraTypeFact{})
		}

		return ctx.ErrorType()
	}

	switch definition := definition.(type) {
	case *visit.TypeParameterDefinition:
		return definition.Param
	case *visit.ProtocolDefinition:
		return ctx.Protocol(definition.Decl)
	case *visit.TypeAliasDefinition:
		// Aliases are resolved in declaration order
		if definition.Type == nil {
			return ctx.ErrorType()
		}

		return definition.Type
	case *visit.AssociatedTypeDefinition:
		return ctx.Member(ctx.SelfParam(), definition.Name, definition.Decl)
	case *visit.BuiltinDefinition:
		return definition.Type
	default:
		return ctx.ErrorType()
	}
}

func (node *NamedTypeNode) resolveNominal(visitor *visit.Visitor, decl *gentypes.NominalDecl, arguments []gentypes.Type) gentypes.Type {
	ctx := visitor.Ctx.Types

	// Inside its own declaration, a generic type may be written without
	// arguments
	if len(arguments) == 0 && len(decl.Params) > 0 {
		if visitor.CurrentDefinition != nil && visitor.CurrentDefinition.Nominal == decl {
			return decl.DeclaredType(ctx)
		}
	}

	if len(arguments) < len(decl.Params) {
		database.SetFact(node, MissingTypesFact(len(decl.Params)-len(arguments)))
		return ctx.ErrorType()
	}

	if len(arguments) > len(decl.Params) {
		for _, extra := range node.Arguments[len(decl.Params):] {
			database.SetFact(extra, ExtraTypeFact{})
		}

		return ctx.ErrorType()
	}

	return ctx.Nominal(decl, arguments...)
}
