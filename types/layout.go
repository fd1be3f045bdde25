package types

type LayoutConstraint int

const (
	LayoutNone LayoutConstraint = iota
	LayoutClass
	LayoutNativeClass
	LayoutTrivial
)

func (layout LayoutConstraint) String() string {
	switch layout {
	case LayoutClass:
		return "AnyObject"
	case LayoutNativeClass:
		return "_NativeClass"
	case LayoutTrivial:
		return "_Trivial"
	default:
		return "<<no layout>>"
	}
}

func ParseLayout(name string) (LayoutConstraint, bool) {
	switch name {
	case "AnyObject":
		return LayoutClass, true
	case "_NativeClass":
		return LayoutNativeClass, true
	case "_Trivial":
		return LayoutTrivial, true
	default:
		return LayoutNone, false
	}
}

func (layout LayoutConstraint) IsClass() bool {
	return layout == LayoutClass || layout == LayoutNativeClass
}

// Implies reports whether every type satisfying layout also satisfies other.
func (layout LayoutConstraint) Implies(other LayoutConstraint) bool {
	switch {
	case other == LayoutNone || layout == other:
		return true
	case layout == LayoutNativeClass && other == LayoutClass:
		return true
	default:
		return false
	}
}

// MergeLayouts returns the most specific layout implying both, or false if
// no type can satisfy both.
func MergeLayouts(left LayoutConstraint, right LayoutConstraint) (LayoutConstraint, bool) {
	switch {
	case left.Implies(right):
		return left, true
	case right.Implies(left):
		return right, true
	default:
		return LayoutNone, false
	}
}

// SatisfiesLayout checks a layout against a concrete type.
func SatisfiesLayout(ty Type, layout LayoutConstraint) bool {
	switch layout {
	case LayoutNone:
		return true
	case LayoutClass:
		switch ty := ty.(type) {
		case *Nominal:
			return ty.IsClass()
		case *Existential:
			return ty.ClassBound && len(ty.Protocols) == 0
		default:
			return false
		}
	case LayoutNativeClass:
		nominal, ok := ty.(*Nominal)
		return ok && nominal.IsClass()
	case LayoutTrivial:
		switch ty := ty.(type) {
		case *Nominal:
			return !ty.IsClass()
		case *Tuple:
			for _, element := range ty.Elements {
				if !SatisfiesLayout(element, LayoutTrivial) {
					return false
				}
			}

			return true
		default:
			return false
		}
	default:
		return false
	}
}
