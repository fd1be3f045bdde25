package types

import (
	"fmt"
	"strings"
)

// Type is the closed set of types the generics engine works with. Every
// value is created (and interned) by a Context, so two structurally equal
// types built by the same Context are the same pointer.
type Type interface {
	fmt.Stringer

	// ID is unique within the owning Context.
	ID() uint

	// Canonical strips sugar (parameter names) from the type.
	Canonical() Type

	sealed()
}

type typeBase struct {
	id        uint
	canonical Type
}

func (t *typeBase) ID() uint { return t.id }

func (t *typeBase) Canonical() Type { return t.canonical }

func (t *typeBase) sealed() {}

// GenericTypeParam is identified by its depth and index. The name is sugar;
// the canonical parameter has no name.
type GenericTypeParam struct {
	typeBase
	Depth  int
	Index  int
	IsPack bool
	Name   string
}

func (t *GenericTypeParam) String() string {
	if t.Name == "" {
		return fmt.Sprintf("τ_%d_%d", t.Depth, t.Index)
	}

	return t.Name
}

// Declaration renders the parameter the way it appears in a parameter list.
func (t *GenericTypeParam) Declaration() string {
	if t.IsPack {
		return "each " + t.String()
	}

	return t.String()
}

// DependentMember is a member type `Base.Name` of a type parameter. Assoc is
// nil until the member has been resolved to an associated type.
type DependentMember struct {
	typeBase
	Base  Type
	Name  string
	Assoc *AssociatedTypeDecl
}

func (t *DependentMember) String() string {
	if t.Assoc != nil {
		return fmt.Sprintf("%v.[%s]%s", t.Base, t.Assoc.Protocol.Name, t.Name)
	}

	return fmt.Sprintf("%v.%s", t.Base, t.Name)
}

// Nominal is a struct, enum or class with its generic arguments applied.
type Nominal struct {
	typeBase
	Decl *NominalDecl
	Args []Type
}

func (t *Nominal) String() string {
	if len(t.Args) == 0 {
		return t.Decl.Name
	}

	return t.Decl.Name + "<" + joinTypes(t.Args, ", ") + ">"
}

// IsClass reports whether values of this type are class references.
func (t *Nominal) IsClass() bool {
	return t.Decl.Kind == KindClass
}

// ProtocolType is the constraint type of a conformance requirement.
type ProtocolType struct {
	typeBase
	Decl *ProtocolDecl
}

func (t *ProtocolType) String() string {
	return t.Decl.Name
}

// Existential is `any P & Q`, optionally class-bound. The protocols are kept
// sorted and deduplicated; `AnyObject` is the empty class-bound existential.
type Existential struct {
	typeBase
	Protocols  []*ProtocolDecl
	ClassBound bool
}

func (t *Existential) String() string {
	if len(t.Protocols) == 0 {
		if t.ClassBound {
			return "AnyObject"
		}

		return "Any"
	}

	names := make([]string, 0, len(t.Protocols)+1)
	for _, proto := range t.Protocols {
		names = append(names, proto.Name)
	}

	if t.ClassBound {
		names = append(names, "AnyObject")
	}

	return "any " + strings.Join(names, " & ")
}

// Function is a function type; it only shows up in inference sources.
type Function struct {
	typeBase
	Params []Type
	Result Type
}

func (t *Function) String() string {
	return "(" + joinTypes(t.Params, ", ") + ") -> " + t.Result.String()
}

type Tuple struct {
	typeBase
	Elements []Type
}

func (t *Tuple) String() string {
	return "(" + joinTypes(t.Elements, ", ") + ")"
}

// Pack is a concrete substitution for a parameter pack.
type Pack struct {
	typeBase
	Elements []Type
}

func (t *Pack) String() string {
	return "Pack{" + joinTypes(t.Elements, ", ") + "}"
}

type ArchetypeKind int

const (
	PrimaryArchetype ArchetypeKind = iota
	OpaqueArchetype
	OpenedArchetype
	ElementArchetype
)

// Archetype is the contextual stand-in for a reduced type parameter inside
// one generic environment. Archetypes are never interned by structure; the
// environment that creates one owns it.
type Archetype struct {
	typeBase
	Kind      ArchetypeKind
	Interface Type
	Env       any
}

func (t *Archetype) String() string {
	switch t.Kind {
	case OpaqueArchetype:
		return "some " + t.Interface.String()
	case OpenedArchetype:
		return "opened " + t.Interface.String()
	case ElementArchetype:
		return "element " + t.Interface.String()
	default:
		return t.Interface.String()
	}
}

// ErrorType stands in for anything that could not be resolved.
type ErrorType struct {
	typeBase
}

func (t *ErrorType) String() string {
	return "<<error type>>"
}

// IsTypeParameter reports whether t is a generic parameter or a member type
// rooted in one.
func IsTypeParameter(t Type) bool {
	switch t := t.(type) {
	case *GenericTypeParam:
		return true
	case *DependentMember:
		return IsTypeParameter(t.Base)
	default:
		return false
	}
}

// RootParam returns the generic parameter a type parameter is rooted in.
func RootParam(t Type) *GenericTypeParam {
	for {
		switch ty := t.(type) {
		case *GenericTypeParam:
			return ty
		case *DependentMember:
			t = ty.Base
		default:
			return nil
		}
	}
}

// MemberDepth is the number of member accesses below the root parameter.
func MemberDepth(t Type) int {
	depth := 0
	for {
		member, ok := t.(*DependentMember)
		if !ok {
			return depth
		}

		depth++
		t = member.Base
	}
}

func joinTypes(types []Type, separator string) string {
	var s strings.Builder
	for i, ty := range types {
		if i > 0 {
			s.WriteString(separator)
		}

		s.WriteString(ty.String())
	}

	return s.String()
}
