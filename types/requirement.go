package types

import (
	"cmp"
	"fmt"
)

// RequirementKind values are declared in requirement order.
type RequirementKind int

const (
	RequirementSuperclass RequirementKind = iota
	RequirementLayout
	RequirementConformance
	RequirementSameType
	RequirementSameShape
)

func (kind RequirementKind) String() string {
	switch kind {
	case RequirementSuperclass:
		return "superclass"
	case RequirementLayout:
		return "layout"
	case RequirementConformance:
		return "conformance"
	case RequirementSameType:
		return "same-type"
	case RequirementSameShape:
		return "same-shape"
	default:
		return "unknown"
	}
}

// Requirement is one fact about a type parameter. For same-shape requirements
// Constraint holds the second pack parameter.
type Requirement struct {
	Kind       RequirementKind
	Subject    Type
	Constraint Type
	Layout     LayoutConstraint
}

// NewRequirement builds a requirement, panicking if the constraint is of the
// wrong kind.
func NewRequirement(kind RequirementKind, subject Type, constraint Type, layout LayoutConstraint) Requirement {
	if subject == nil {
		panic("requirement has no subject")
	}

	switch kind {
	case RequirementConformance:
		if _, ok := constraint.(*ProtocolType); !ok {
			panic(fmt.Sprintf("conformance requirement on %v has non-protocol constraint %v", subject, constraint))
		}
	case RequirementSuperclass:
		if nominal, ok := constraint.(*Nominal); !ok || !nominal.IsClass() {
			panic(fmt.Sprintf("superclass requirement on %v has non-class constraint %v", subject, constraint))
		}
	case RequirementLayout:
		if layout == LayoutNone {
			panic(fmt.Sprintf("layout requirement on %v has no layout", subject))
		}

		constraint = nil
	case RequirementSameType:
		if constraint == nil {
			panic(fmt.Sprintf("same-type requirement on %v has no constraint", subject))
		}
	case RequirementSameShape:
		if !isPackParam(subject) || !isPackParam(constraint) {
			panic(fmt.Sprintf("same-shape requirement between %v and %v needs pack parameters", subject, constraint))
		}
	default:
		panic(fmt.Sprintf("unknown requirement kind %d", kind))
	}

	if kind != RequirementLayout {
		layout = LayoutNone
	}

	return Requirement{Kind: kind, Subject: subject, Constraint: constraint, Layout: layout}
}

func isPackParam(t Type) bool {
	root := RootParam(t)
	return root != nil && root.IsPack
}

func ConformanceRequirement(ctx *Context, subject Type, proto *ProtocolDecl) Requirement {
	return NewRequirement(RequirementConformance, subject, ctx.Protocol(proto), LayoutNone)
}

func SuperclassRequirement(subject Type, class *Nominal) Requirement {
	return NewRequirement(RequirementSuperclass, subject, class, LayoutNone)
}

func LayoutRequirement(subject Type, layout LayoutConstraint) Requirement {
	return NewRequirement(RequirementLayout, subject, nil, layout)
}

func SameTypeRequirement(subject Type, constraint Type) Requirement {
	return NewRequirement(RequirementSameType, subject, constraint, LayoutNone)
}

func SameShapeRequirement(subject Type, other Type) Requirement {
	return NewRequirement(RequirementSameShape, subject, other, LayoutNone)
}

// Protocol returns the protocol of a conformance requirement.
func (req Requirement) Protocol() *ProtocolDecl {
	if proto, ok := req.Constraint.(*ProtocolType); ok {
		return proto.Decl
	}

	return nil
}

func (req Requirement) Canonical() Requirement {
	result := req
	result.Subject = req.Subject.Canonical()
	if req.Constraint != nil {
		result.Constraint = req.Constraint.Canonical()
	}

	return result
}

// Transform applies f to both sides of the requirement. The result is not
// validated again, so substituted requirements may have concrete subjects.
func (req Requirement) Transform(f func(Type) Type) Requirement {
	result := req
	result.Subject = f(req.Subject)
	if req.Constraint != nil && req.Kind != RequirementConformance {
		result.Constraint = f(req.Constraint)
	}

	return result
}

func (req Requirement) Equal(other Requirement) bool {
	return req.Kind == other.Kind &&
		req.Subject == other.Subject &&
		req.Constraint == other.Constraint &&
		req.Layout == other.Layout
}

func (req Requirement) String() string {
	switch req.Kind {
	case RequirementLayout:
		return fmt.Sprintf("%v: %v", req.Subject, req.Layout)
	case RequirementSameType:
		return fmt.Sprintf("%v == %v", req.Subject, req.Constraint)
	case RequirementSameShape:
		return fmt.Sprintf("shape(%v) == shape(%v)", req.Subject, req.Constraint)
	default:
		return fmt.Sprintf("%v: %v", req.Subject, req.Constraint)
	}
}

// CompareRequirements orders requirements by subject, then kind, then
// protocol (for conformances), then constraint.
func CompareRequirements(left Requirement, right Requirement) int {
	if c := CompareTypes(left.Subject, right.Subject); c != 0 {
		return c
	}

	if c := cmp.Compare(left.Kind, right.Kind); c != 0 {
		return c
	}

	if left.Kind == RequirementConformance {
		return CompareProtocols(left.Protocol(), right.Protocol())
	}

	if left.Kind == RequirementLayout {
		return cmp.Compare(left.Layout, right.Layout)
	}

	return CompareTypes(left.Constraint, right.Constraint)
}
