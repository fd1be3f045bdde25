package types

import (
	"cmp"
	"strings"
)

func CompareProtocols(left *ProtocolDecl, right *ProtocolDecl) int {
	if left == right {
		return 0
	}

	if c := strings.Compare(left.Name, right.Name); c != 0 {
		return c
	}

	return cmp.Compare(left.order, right.order)
}

func CompareAssociatedTypes(left *AssociatedTypeDecl, right *AssociatedTypeDecl) int {
	if left == right {
		return 0
	}

	if c := CompareProtocols(left.Protocol, right.Protocol); c != 0 {
		return c
	}

	return cmp.Compare(left.order, right.order)
}

func CompareParams(left *GenericTypeParam, right *GenericTypeParam) int {
	if c := cmp.Compare(left.Depth, right.Depth); c != 0 {
		return c
	}

	return cmp.Compare(left.Index, right.Index)
}

// CompareTypeParameters is the shortlex order over type parameters: fewer
// member accesses first, then the root parameter, then each member by name
// with the associated type breaking ties.
func CompareTypeParameters(left Type, right Type) int {
	if left == right {
		return 0
	}

	if c := cmp.Compare(MemberDepth(left), MemberDepth(right)); c != 0 {
		return c
	}

	return compareSameDepth(left, right)
}

func compareSameDepth(left Type, right Type) int {
	switch left := left.(type) {
	case *GenericTypeParam:
		return CompareParams(left, right.(*GenericTypeParam))
	case *DependentMember:
		right := right.(*DependentMember)
		if c := compareSameDepth(left.Base, right.Base); c != 0 {
			return c
		}

		if c := strings.Compare(left.Name, right.Name); c != 0 {
			return c
		}

		switch {
		case left.Assoc == right.Assoc:
			return 0
		case left.Assoc == nil:
			return 1
		case right.Assoc == nil:
			return -1
		default:
			return CompareAssociatedTypes(left.Assoc, right.Assoc)
		}
	default:
		panic("not a type parameter")
	}
}

var typeKindOrder = map[string]int{
	"param":       0,
	"member":      0,
	"archetype":   1,
	"nominal":     2,
	"protocol":    3,
	"existential": 4,
	"function":    5,
	"tuple":       6,
	"pack":        7,
	"error":       8,
}

func typeKind(t Type) string {
	switch t.(type) {
	case *GenericTypeParam:
		return "param"
	case *DependentMember:
		return "member"
	case *Archetype:
		return "archetype"
	case *Nominal:
		return "nominal"
	case *ProtocolType:
		return "protocol"
	case *Existential:
		return "existential"
	case *Function:
		return "function"
	case *Tuple:
		return "tuple"
	case *Pack:
		return "pack"
	default:
		return "error"
	}
}

// CompareTypes is a total order over all types. Type parameters come first,
// in shortlex order; everything else is ordered by kind and then structure.
func CompareTypes(left Type, right Type) int {
	if left == right {
		return 0
	}

	if c := cmp.Compare(typeKindOrder[typeKind(left)], typeKindOrder[typeKind(right)]); c != 0 {
		return c
	}

	switch left := left.(type) {
	case *GenericTypeParam, *DependentMember:
		if c := CompareTypeParameters(left, right); c != 0 {
			return c
		}
	case *Archetype:
		right := right.(*Archetype)
		if c := CompareTypes(left.Interface, right.Interface); c != 0 {
			return c
		}
	case *Nominal:
		right := right.(*Nominal)
		if c := cmp.Compare(left.Decl.order, right.Decl.order); c != 0 {
			return c
		}

		if c := compareTypeLists(left.Args, right.Args); c != 0 {
			return c
		}
	case *ProtocolType:
		return CompareProtocols(left.Decl, right.(*ProtocolType).Decl)
	case *Existential:
		right := right.(*Existential)
		if c := cmp.Compare(len(left.Protocols), len(right.Protocols)); c != 0 {
			return c
		}

		for i := range left.Protocols {
			if c := CompareProtocols(left.Protocols[i], right.Protocols[i]); c != 0 {
				return c
			}
		}

		if left.ClassBound != right.ClassBound {
			if left.ClassBound {
				return 1
			}

			return -1
		}
	case *Function:
		right := right.(*Function)
		if c := compareTypeLists(left.Params, right.Params); c != 0 {
			return c
		}

		if c := CompareTypes(left.Result, right.Result); c != 0 {
			return c
		}
	case *Tuple:
		if c := compareTypeLists(left.Elements, right.(*Tuple).Elements); c != 0 {
			return c
		}
	case *Pack:
		if c := compareTypeLists(left.Elements, right.(*Pack).Elements); c != 0 {
			return c
		}
	}

	// Structurally equal but distinct (sugared or fresh) types
	return cmp.Compare(left.ID(), right.ID())
}

func compareTypeLists(left []Type, right []Type) int {
	if c := cmp.Compare(len(left), len(right)); c != 0 {
		return c
	}

	for i := range left {
		if c := CompareTypes(left[i], right[i]); c != 0 {
			return c
		}
	}

	return 0
}
