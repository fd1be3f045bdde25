package statements

import (
	"gensig/database"
	"gensig/nodes/types"
	"gensig/syntax"
	"gensig/visit"
)

type TypeAliasNode struct {
	Comments []string
	Name     string
	Type     database.Node
	Facts    *database.Facts
}

func (node *TypeAliasNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseTypeAliasStatement(parser *syntax.Parser) (*TypeAliasNode, *syntax.Error) {
	span := parser.Spanned()

	comments, err := ParseComments(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("TypeAliasKeyword")
	if err != nil {
		return nil, err
	}

	parser.Commit("in this type alias")

	name, err := syntax.ParseTypeName(parser)
	if err != nil {
		return nil, err
	}

	_, err = parser.Token("AssignOperator")
	if err != nil {
		return nil, err
	}

	ty, err := types.ParseType(parser)
	if err != nil {
		return nil, err
	}

	return &TypeAliasNode{
		Comments: comments,
		Name:     name,
		Type:     ty,
		Facts:    database.NewFacts(span()),
	}, nil
}

func (node *TypeAliasNode) Visit(visitor *visit.Visitor) {
	visit.Defining(visitor, node, func() (*visit.TypeAliasDefinition, bool) {
		definition := &visit.TypeAliasDefinition{
			Name: node.Name,
			Node: node,
		}

		visitor.Define(node.Name, definition)

		// Aliases in a type's body are the type's members, and may witness
		// associated types
		nominal := visitor.CurrentDefinition.Nominal

		visitor.AfterTypeDefinitions(func() {
			definition.Type = visitor.ResolveType(node.Type)

			if nominal != nil {
				nominal.Members[node.Name] = definition.Type
			}
		})

		return definition, true
	})
}
