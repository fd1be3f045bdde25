package visit

import (
	"fmt"
	"reflect"
	"slices"

	"gensig/database"
	"gensig/generics"
	"gensig/types"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gensig.visit")

type ResolvedFact struct {
	Name        string
	Definitions []Definition
}

func (fact ResolvedFact) String() string {
	if len(fact.Definitions) == 0 {
		return "unresolved"
	}

	return ""
}

type TypeFact struct {
	Type types.Type
}

func (fact TypeFact) String() string {
	return fmt.Sprintf("has type %v", fact.Type)
}

type Visit interface {
	database.Node
	Visit(visitor *Visitor)
}

// TypeRepr is a node that spells a type.
type TypeRepr interface {
	database.Node
	ResolveType(visitor *Visitor) types.Type
}

type Visitor struct {
	Db                *database.Db
	Ctx               *generics.Context
	Scopes            []Scope
	CurrentDefinition *CurrentDefinition
	Queue             Queue

	// Conformances are the conformances written so far, in source order.
	Conformances []DeclaredConformance
}

func NewVisitor(db *database.Db, ctx *generics.Context, scopes []Scope) *Visitor {
	visitor := &Visitor{
		Db:     db,
		Ctx:    ctx,
		Scopes: scopes,
	}

	if len(scopes) == 0 {
		visitor.PushScope()
		visitor.Define("AnyObject", &BuiltinDefinition{Name: "AnyObject", Type: ctx.Types.AnyObject()})
	}

	visitor.PushScope()

	return visitor
}

func (visitor *Visitor) Visit(node database.Node) {
	visitor.Db.Register(node)

	if visit, ok := node.(Visit); ok {
		visit.Visit(visitor)
	} else {
		panic(fmt.Sprintf("node is missing `Visit` method: %s", database.DisplayNode(node)))
	}
}

// ResolveType resolves a type node in the current scope and records the
// result on the node.
func (visitor *Visitor) ResolveType(node database.Node) types.Type {
	repr, ok := node.(TypeRepr)
	if !ok {
		panic(fmt.Sprintf("node is not a type: %s", database.DisplayNode(node)))
	}

	visitor.Db.Register(node)

	ty := repr.ResolveType(visitor)
	database.SetFact(node, TypeFact{Type: ty})

	return ty
}

func (visitor *Visitor) PushScope() {
	visitor.Scopes = append(visitor.Scopes, Scope{})
}

func (visitor *Visitor) PeekScope() Scope {
	return visitor.Scopes[len(visitor.Scopes)-1]
}

func (visitor *Visitor) PopScope() Scope {
	scope := visitor.PeekScope()
	visitor.Scopes = visitor.Scopes[:len(visitor.Scopes)-1]
	return scope
}

func Resolve[T Definition](visitor *Visitor, name string, node database.Node) (T, bool) {
	if definition, ok := ResolveOf(visitor, name, node, []reflect.Type{reflect.TypeFor[T]()}); ok {
		return definition.(T), true
	}

	var zero T
	return zero, false
}

func ResolveOf(visitor *Visitor, name string, node database.Node, types []reflect.Type) (Definition, bool) {
	definitions, ok := PeekOf(visitor, name, types)

	database.SetFact(node, ResolvedFact{
		Name:        name,
		Definitions: definitions,
	})

	if !ok {
		return nil, false
	}

	return definitions[0], true
}

func Peek[T Definition](visitor *Visitor, name string) ([]T, bool) {
	if definitions, ok := PeekOf(visitor, name, []reflect.Type{reflect.TypeFor[T]()}); ok {
		result := make([]T, 0, len(definitions))
		for _, definition := range definitions {
			result = append(result, definition.(T))
		}

		return result, true
	}

	return nil, false
}

func PeekOf(visitor *Visitor, name string, types []reflect.Type) ([]Definition, bool) {
	for _, scope := range slices.Backward(visitor.Scopes) {
		if definitions, ok := scope[name]; ok {
			matching := make([]Definition, 0, len(definitions))
			for _, d := range definitions {
				if slices.Contains(types, reflect.TypeOf(d)) {
					matching = append(matching, d)
				}
			}

			return matching, len(matching) > 0
		}
	}

	return nil, false
}

func (visitor *Visitor) Define(name string, definition Definition) {
	scope := visitor.PeekScope()
	scope[name] = append(scope[name], definition)
}

func Defining[T Definition](visitor *Visitor, node database.Node, f func() (T, bool)) (T, bool) {
	existingDefinition := visitor.CurrentDefinition
	visitor.CurrentDefinition = &CurrentDefinition{Node: node}
	if existingDefinition != nil {
		visitor.CurrentDefinition.Signature = existingDefinition.Signature
		visitor.CurrentDefinition.Protocol = existingDefinition.Protocol
		visitor.CurrentDefinition.Nominal = existingDefinition.Nominal
	}

	resultDefinition, ok := f()
	visitor.CurrentDefinition = existingDefinition

	if ok {
		database.SetFact(node, DefinedFact{Definition: resultDefinition})
	}

	return resultDefinition, ok
}

// Within runs f with the given generic context as the enclosing one, so
// nested declarations use it as their outer signature.
func (visitor *Visitor) Within(sig *generics.GenericSignature, f func()) {
	existing := visitor.CurrentDefinition
	current := &CurrentDefinition{Signature: sig}
	if existing != nil {
		*current = *existing
		current.Signature = sig
	}

	visitor.CurrentDefinition = current
	f()
	visitor.CurrentDefinition = existing
}

// OuterSignature is the signature of the enclosing generic context, if any.
func (visitor *Visitor) OuterSignature() *generics.GenericSignature {
	if visitor.CurrentDefinition == nil {
		return nil
	}

	return visitor.CurrentDefinition.Signature
}

// NextDepth is the depth of parameters declared in the current context.
func (visitor *Visitor) NextDepth() int {
	outer := visitor.OuterSignature()
	if outer == nil || len(outer.Params()) == 0 {
		return 0
	}

	params := outer.Params()
	return params[len(params)-1].Depth + 1
}

func (visitor *Visitor) Finish() Scope {
	for {
		entry, ok := visitor.Queue.dequeue()
		if !ok {
			break
		}

		previousScopes := slices.Clone(visitor.Scopes)
		previousDefinition := visitor.CurrentDefinition
		visitor.Scopes = entry.scopes
		visitor.CurrentDefinition = entry.currentDefinition

		entry.f()

		visitor.Scopes = previousScopes
		visitor.CurrentDefinition = previousDefinition
	}

	return visitor.PopScope()
}

type Scope map[string][]Definition

type CurrentDefinition struct {
	Node database.Node

	// Signature is the enclosing generic context.
	Signature *generics.GenericSignature

	Protocol *types.ProtocolDecl
	Nominal  *types.NominalDecl
}

type queuedVisit struct {
	f                 func()
	scopes            []Scope
	currentDefinition *CurrentDefinition
}

type phase int

const (
	afterTypeDefinitions phase = iota
	afterAllDefinitions
	afterAllRequirements
	afterTypeSignatures
	afterAllConformances
	afterAllSignatures
	phaseCount
)

// Needed so declarations are resolved before the signatures that mention
// them. Each phase runs once the previous one is empty, and work queued
// while a phase runs joins the end of its own phase.
type Queue [phaseCount][]queuedVisit

// AfterTypeDefinitions runs once every name is declared. Inheritance
// clauses, superclasses and type aliases are resolved here.
func (visitor *Visitor) AfterTypeDefinitions(f func()) {
	visitor.enqueue(afterTypeDefinitions, f)
}

// AfterAllDefinitions runs once the protocol hierarchy is known. Protocol
// requirement signatures and unconditional conformances are resolved here.
func (visitor *Visitor) AfterAllDefinitions(f func()) {
	visitor.enqueue(afterAllDefinitions, f)
}

// AfterAllRequirements runs once every protocol is complete, so the
// signatures of type declarations can be built.
func (visitor *Visitor) AfterAllRequirements(f func()) {
	visitor.enqueue(afterAllRequirements, f)
}

// AfterTypeSignatures runs once every type declaration has a signature.
// Extensions and their conditional conformances are resolved here.
func (visitor *Visitor) AfterTypeSignatures(f func()) {
	visitor.enqueue(afterTypeSignatures, f)
}

// AfterAllConformances runs once every conformance is known. Functions and
// `signature` statements are built here.
func (visitor *Visitor) AfterAllConformances(f func()) {
	visitor.enqueue(afterAllConformances, f)
}

// AfterAllSignatures runs last; `check` statements go here.
func (visitor *Visitor) AfterAllSignatures(f func()) {
	visitor.enqueue(afterAllSignatures, f)
}

func (visitor *Visitor) enqueue(p phase, f func()) {
	var current *CurrentDefinition
	if visitor.CurrentDefinition != nil {
		copied := *visitor.CurrentDefinition
		current = &copied
	}

	visitor.Queue[p] = append(visitor.Queue[p], queuedVisit{
		f:                 f,
		scopes:            slices.Clone(visitor.Scopes),
		currentDefinition: current,
	})
}

func (queue *Queue) dequeue() (queuedVisit, bool) {
	for i := range queue {
		if len(queue[i]) > 0 {
			f := queue[i][0]
			queue[i] = queue[i][1:]
			return f, true
		}
	}

	return queuedVisit{}, false
}
