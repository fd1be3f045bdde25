package statements

import (
	"gensig/database"
	"gensig/nodes/constraints"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

// SignatureNode writes a generic signature directly, as in
// `signature <T, U where T: Sequence, T.Element == U>`.
type SignatureNode struct {
	Comments   []string
	Parameters []*types.TypeParameterNode
	Where      []database.Node
	Facts      *database.Facts
}

func (node *SignatureNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseSignatureStatement(parser *syntax.Parser) (*SignatureNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("SignatureKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this signature")

	parameters, where, err := types.ParseTypeParameters(parser, constraints.ParseWhereClause)
	if err != nil {
		return nil, err
	}

	return &SignatureNode{
		Comments:   comments,
		Parameters: parameters,
		Where:      where,
		Facts:      database.NewFacts(span()),
	}, nil
}

func (node *SignatureNode) Visit(visitor *visit.Visitor) {
	visitor.AfterAllConformances(func() {
		visitor.PushScope()
		defer visitor.PopScope()

		params := types.DefineParameters(visitor, node.Parameters)

		result := visit.BuildSignature(visitor.Ctx, visit.Request{
			Params:  params,
			Where:   visit.RequirementReprs(node.Where),
			Kind:    visit.DeclSignature,
			Resolve: visitor.ResolveType,
		})

		for _, where := range node.Where {
			visitor.Visit(where)
		}

		database.SetFact(node, result.Fact())
	})
}
