package statements

import (
	"slices"

	"gensig/database"
	"gensig/nodes/constraints"
	"gensig/nodes/types"
	"gensig/syntax"
	gentypes "gensig/types"
	"gensig/visit"
)

type ProtocolNode struct {
	Comments  []string
	Name      string
	Inherited []database.Node
	Where     []database.Node
	Members   []database.Node
	Facts     *database.Facts
}

func (node *ProtocolNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseProtocolStatement(parser *syntax.Parser) (*ProtocolNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("ProtocolKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this protocol")

	name, err := syntax.ParseProtocolName(parser)
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
		return ParseBody(parser, parseProtocolMember)
	})
	if err != nil {
		return nil, err
	}

	return &ProtocolNode{
		Comments:  comments,
		Name:      name,
		Inherited: inherited,
		Where:     where,
		Members:   members,
		Facts:     database.NewFacts(span()),
	}, nil
}

func parseProtocolMember(parser *syntax.Parser) (database.Node, *syntax.Error) {
	associatedType, ok, err := syntax.ParseOptional(parser, ParseAssociatedTypeStatement)
	if err != nil {
		return nil, err
	}
	if ok {
		return associatedType, nil
	}

	function, ok, err := syntax.ParseOptional(parser, ParseFunctionStatement)
	if err != nil {
		return nil, err
	}
	if ok {
		return function, nil
	}

	return nil, parser.Error("Expected `associatedtype` or `func`")
}

func (node *ProtocolNode) Visit(visitor *visit.Visitor) {
	visit.Defining(visitor, node, func() (*visit.ProtocolDefinition, bool) {
		ctx := visitor.Ctx.Types
		decl := ctx.DeclareProtocol(node.Name)

		definition := &visit.ProtocolDefinition{
			Name:     node.Name,
			Node:     node,
			Comments: node.Comments,
			Decl:     decl,
		}

		visitor.Define(node.Name, definition)

		visitor.CurrentDefinition.Protocol = decl
		visitor.CurrentDefinition.Nominal = nil

		visitor.PushScope()
		defer visitor.PopScope()

		self := ctx.SelfParam()
		visitor.Define("Self", &visit.TypeParameterDefinition{
			Name:  "Self",
			Node:  node,
			Param: self,
		})

		visitMembers(visitor, node.Members)

		visitor.AfterTypeDefinitions(func() {
			inheritance := resolveInheritance(visitor, node.Inherited)
			for _, inherited := range inheritance.protocols {
				if inherited.value == decl || inherited.value.Inherits(decl) {
					database.SetFact(inherited.node, InvalidInheritanceFact{Type: ctx.Protocol(inherited.value)})
					continue
				}

				if !slices.Contains(decl.Inherited, inherited.value) {
					decl.Inherited = append(decl.Inherited, inherited.value)
				}
			}

			slices.SortFunc(decl.Inherited, gentypes.CompareProtocols)

			decl.ClassBound = decl.ClassBound || inheritance.classBound
			for _, class := range inheritance.classes {
				decl.Requirements = append(decl.Requirements, gentypes.SuperclassRequirement(self, class.value))
			}

			// Once every protocol's inheritance clause is known
			visitor.AfterTypeDefinitions(func() {
				node.resolveRequirementSignature(visitor, decl)
			})
		})

		visitor.AfterAllRequirements(func() {
			// Members see `Self` as a type conforming to the protocol
			result := visit.BuildSignature(visitor.Ctx, visit.Request{
				Params: []visit.ParamRepr{{Name: "Self", Depth: 0, Index: 0, Node: node}},
				Added:  []gentypes.Requirement{gentypes.ConformanceRequirement(ctx, self, decl)},
				Kind:   visit.DeclProtocol,
				Resolve: func(node database.Node) gentypes.Type {
					return visitor.ResolveType(node)
				},
			})

			database.SetFact(node, result.Fact())

			visitFunctions(visitor, result.Signature, node.Members)
		})

		return definition, true
	})
}

// resolveRequirementSignature collects the requirements the protocol places
// on `Self` and its associated types. They are kept as written, sorted,
// because minimizing them needs the protocol itself.
func (node *ProtocolNode) resolveRequirementSignature(visitor *visit.Visitor, decl *gentypes.ProtocolDecl) {
	ctx := visitor.Ctx.Types
	self := ctx.SelfParam()

	var requirements []gentypes.Requirement
	add := func(repr visit.RequirementRepr, subject gentypes.Type) {
		resolved, reason := visit.ResolveRequirement(ctx, repr, subject, visitor.ResolveType)
		if reason != "" {
			database.SetFact(repr.Node, visit.InvalidRequirementFact{Reason: reason})
			return
		}

		for _, req := range resolved {
			switch {
			case req.Subject == gentypes.Type(self) && req.Kind == gentypes.RequirementConformance:
				// `where Self: P` is the same as inheriting from P
				if proto := req.Protocol(); proto != decl && !slices.Contains(decl.Inherited, proto) && !proto.Inherits(decl) {
					decl.Inherited = append(decl.Inherited, proto)
				}
			case req.Subject == gentypes.Type(self) && req.Kind == gentypes.RequirementLayout && req.Layout == gentypes.LayoutClass:
				decl.ClassBound = true
			default:
				requirements = append(requirements, req)
			}
		}
	}

	for _, member := range node.Members {
		associatedType, ok := member.(*AssociatedTypeNode)
		if !ok || associatedType.Decl == nil {
			continue
		}

		subject := ctx.Member(self, associatedType.Name, associatedType.Decl)
		for _, inherited := range associatedType.Inherited {
			add(visit.RequirementRepr{
				Kind:       visit.ReprConstraint,
				Subject:    associatedType,
				Constraint: inherited,
				Node:       inherited,
			}, subject)
		}

		for _, repr := range visit.RequirementReprs(associatedType.Where) {
			visitor.Visit(repr.Node)
			add(repr, visitor.ResolveType(repr.Subject))
		}
	}

	for _, repr := range visit.RequirementReprs(node.Where) {
		visitor.Visit(repr.Node)
		add(repr, visitor.ResolveType(repr.Subject))
	}

	slices.SortFunc(decl.Inherited, gentypes.CompareProtocols)

	requirements = append(decl.Requirements, requirements...)
	slices.SortStableFunc(requirements, gentypes.CompareRequirements)
	decl.Requirements = slices.CompactFunc(requirements, gentypes.Requirement.Equal)

	log.Debugf("protocol %v has requirement signature %v", decl, decl.Requirements)
}

type AssociatedTypeNode struct {
	Comments  []string
	Name      string
	Inherited []database.Node
	Where     []database.Node
	Decl      *gentypes.AssociatedTypeDecl
	Facts     *database.Facts
}

func (node *AssociatedTypeNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseAssociatedTypeStatement(parser *syntax.Parser) (*AssociatedTypeNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("AssociatedTypeKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this associated type")

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

	return &AssociatedTypeNode{
		Comments:  comments,
		Name:      name,
		Inherited: inherited,
		Where:     where,
		Facts:     database.NewFacts(span()),
	}, nil
}

func (node *AssociatedTypeNode) Visit(visitor *visit.Visitor) {
	visit.Defining(visitor, node, func() (*visit.AssociatedTypeDefinition, bool) {
		proto := visitor.CurrentDefinition.Protocol
		if proto == nil {
			database.SetFact(node, OutsideProtocolFact{})
			return nil, false
		}

		node.Decl = visitor.Ctx.Types.AddAssociatedType(proto, node.Name)

		definition := &visit.AssociatedTypeDefinition{
			Name:     node.Name,
			Node:     node,
			Comments: node.Comments,
			Decl:     node.Decl,
		}

		visitor.Define(node.Name, definition)

		return definition, true
	})
}

type OutsideProtocolFact struct{}

func (fact OutsideProtocolFact) String() string {
	return "is outside a protocol"
}
