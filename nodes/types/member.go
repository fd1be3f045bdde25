package types

import (
	"gensig/database"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

// MemberTypeNode is `Base.Name`, or `Base.[Protocol]Name` when the
// associated type is spelled out.
type MemberTypeNode struct {
	Base     database.Node
	Protocol string
	Name     string
	Facts    *database.Facts
}

func (node *MemberTypeNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseMemberType(parser *syntax.Parser) (database.Node, *syntax.Error) {
	span := parser.Spanned()

	base, err := ParseAtomicType(parser)
	if err != nil {
		return nil, err
	}

	for {
		member, ok, err := syntax.ParseOptional(parser, func(parser *syntax.Parser) (*MemberTypeNode, *syntax.Error) {
			_, err := parser.Token("MemberOperator")
			if err != nil {
				return nil, err
			}

			parser.Commit("in this member type")

			protocol, _, err := syntax.ParseOptional(parser, parseMemberProtocol)
			if err != nil {
				return nil, err
			}

			name, err := syntax.ParseTypeName(parser)
			if err != nil {
				return nil, err
			}

			return &MemberTypeNode{
				Base:     base,
				Protocol: protocol,
				Name:     name,
				Facts:    database.NewFacts(span()),
			}, nil
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return base, nil
		}

		base = member
	}
}

func parseMemberProtocol(parser *syntax.Parser) (string, *syntax.Error) {
	_, err := parser.Token("LeftBracket", syntax.TokenConfig{
		Reason: "in this protocol qualifier",
	})
	if err != nil {
		return "", err
	}

	protocol, err := syntax.ParseProtocolName(parser)
	if err != nil {
		return "", err
	}

	_, err = parser.Token("RightBracket")
	if err != nil {
		return "", err
	}

	return protocol, nil
}

func (node *MemberTypeNode) Visit(visitor *visit.Visitor) {
	visitor.ResolveType(node)
}

func (node *MemberTypeNode) ResolveType(visitor *visit.Visitor) gentypes.Type {
	visitType(visitor, node)

	ctx := visitor.Ctx.Types
	base := visitor.ResolveType(node.Base)

	if gentypes.ContainsError(base) {
		return ctx.ErrorType()
	}

	var assoc *gentypes.AssociatedTypeDecl
	if node.Protocol != "" {
		proto, ok := visit.Resolve[*visit.ProtocolDefinition](visitor, node.Protocol, node)
		if !ok {
			return ctx.ErrorType()
		}

		assoc = proto.Decl.AssociatedType(node.Name)
		if assoc == nil {
			return ctx.ErrorType()
		}
	}

	if gentypes.IsTypeParameter(base) {
		// Members of `Self` inside a protocol refer to its own associated
		// types; other members are resolved by the requirement machine
		if assoc == nil && base == ctx.SelfParam() && visitor.CurrentDefinition != nil && visitor.CurrentDefinition.Protocol != nil {
			assoc = visitor.CurrentDefinition.Protocol.AssociatedType(node.Name)
		}

		return ctx.Member(base, node.Name, assoc)
	}

	nominal, ok := base.(*gentypes.Nominal)
	if !ok {
		return ctx.ErrorType()
	}

	if assoc != nil {
		lookup := ctx.LookupConformance(nominal, assoc.Protocol)
		if lookup == nil {
			return ctx.ErrorType()
		}

		return lookup.TypeWitness(ctx, node.Name)
	}

	return concreteMember(ctx, nominal, node.Name)
}

// concreteMember finds a type alias or a type witness of a concrete type.
func concreteMember(ctx *gentypes.Context, nominal *gentypes.Nominal, name string) gentypes.Type {
	self := &gentypes.ConformanceLookup{
		Conformance: &gentypes.NormalConformance{Nominal: nominal.Decl},
		Args:        nominal.Args,
	}

	if member, ok := nominal.Decl.Members[name]; ok {
		return self.Specialize(ctx, member)
	}

	for _, conformance := range nominal.Decl.Conformances {
		if conformance.Protocol.AssociatedType(name) == nil {
			continue
		}

		if witness, ok := conformance.TypeWitness(name); ok {
			return self.Specialize(ctx, witness)
		}
	}

	if superclass := ctx.SuperclassOf(nominal); superclass != nil {
		return concreteMember(ctx, superclass, name)
	}

	return ctx.ErrorType()
}
