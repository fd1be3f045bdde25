package visit

import (
	"gensig/database"
	"gensig/generics"
	"gensig/types"
)

type DefinedFact struct {
	Definition Definition
}

func (fact DefinedFact) String() string {
	return "is a definition"
}

type Definition interface {
	GetName() string
	GetNode() database.Node
	GetComments() []string
}

type ProtocolDefinition struct {
	Name     string
	Node     database.Node
	Comments []string
	Decl     *types.ProtocolDecl
}

func (definition *ProtocolDefinition) GetName() string {
	return definition.Name
}

func (definition *ProtocolDefinition) GetNode() database.Node {
	return definition.Node
}

func (definition *ProtocolDefinition) GetComments() []string {
	return definition.Comments
}

type AssociatedTypeDefinition struct {
	Name     string
	Node     database.Node
	Comments []string
	Decl     *types.AssociatedTypeDecl
}

func (definition *AssociatedTypeDefinition) GetName() string {
	return definition.Name
}

func (definition *AssociatedTypeDefinition) GetNode() database.Node {
	return definition.Node
}

func (definition *AssociatedTypeDefinition) GetComments() []string {
	return definition.Comments
}

type NominalDefinition struct {
	Name     string
	Node     database.Node
	Comments []string
	Decl     *types.NominalDecl

	// Signature is set once the declaration's where clause is resolved.
	Signature *generics.GenericSignature
}

func (definition *NominalDefinition) GetName() string {
	return definition.Name
}

func (definition *NominalDefinition) GetNode() database.Node {
	return definition.Node
}

func (definition *NominalDefinition) GetComments() []string {
	return definition.Comments
}

type TypeAliasDefinition struct {
	Name string
	Node database.Node
	Type types.Type
}

func (definition *TypeAliasDefinition) GetName() string {
	return definition.Name
}

func (definition *TypeAliasDefinition) GetNode() database.Node {
	return definition.Node
}

func (definition *TypeAliasDefinition) GetComments() []string {
	return nil
}

type FunctionDefinition struct {
	Name      string
	Node      database.Node
	Comments  []string
	Signature *generics.GenericSignature
}

func (definition *FunctionDefinition) GetName() string {
	return definition.Name
}

func (definition *FunctionDefinition) GetNode() database.Node {
	return definition.Node
}

func (definition *FunctionDefinition) GetComments() []string {
	return definition.Comments
}

type TypeParameterDefinition struct {
	Name  string
	Node  database.Node
	Param *types.GenericTypeParam
}

func (definition *TypeParameterDefinition) GetName() string {
	return definition.Name
}

func (definition *TypeParameterDefinition) GetNode() database.Node {
	return definition.Node
}

func (definition *TypeParameterDefinition) GetComments() []string {
	return nil
}

// BuiltinDefinition names a type every file can refer to, like `AnyObject`.
type BuiltinDefinition struct {
	Name string
	Type types.Type
}

func (definition *BuiltinDefinition) GetName() string {
	return definition.Name
}

func (definition *BuiltinDefinition) GetNode() database.Node {
	return nil
}

func (definition *BuiltinDefinition) GetComments() []string {
	return nil
}
