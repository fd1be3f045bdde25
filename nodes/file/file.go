package file

import (
	"gensig/database"
	"gensig/nodes/statements"
	"gensig/syntax"
	"gensig/visit"
)

type FileNode struct {
	Statements []database.Node
	Facts      *database.Facts
}

func (node *FileNode) GetFacts() *database.Facts {
	return node.Facts
}

func ParseFile(parser *syntax.Parser) (*FileNode, *syntax.Error) {
	span := parser.Spanned()

	stmts, err := statements.ParseStatements(parser)
	if err != nil {
		return nil, err
	}

	_, err = statements.ParseComments(parser)
	if err != nil {
		return nil, err
	}

	return &FileNode{
		Statements: stmts,
		Facts:      database.NewFacts(span()),
	}, nil
}

func (node *FileNode) Visit(visitor *visit.Visitor) {
	for _, statement := range node.Statements {
		visitor.Visit(statement)
	}
}
