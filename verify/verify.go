package verify

import (
	"fmt"
	"slices"

	"gensig/generics"
	"gensig/types"

	"github.com/davecgh/go-spew/spew"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gensig.verify")

// Fault is a built signature that breaks an invariant of minimal canonical
// form. It always indicates a bug in the builder.
type Fault struct {
	Signature   *generics.GenericSignature
	Requirement types.Requirement
	Message     string
}

func (fault *Fault) Error() string {
	return fmt.Sprintf("invalid signature %v: %s\n%s", fault.Signature, fault.Message, spew.Sdump(fault.Requirement))
}

func fail(sig *generics.GenericSignature, req types.Requirement, format string, args ...any) {
	panic(&Fault{
		Signature:   sig,
		Requirement: req,
		Message:     fmt.Sprintf(format, args...),
	})
}

// Verify checks that a signature is in minimal canonical form, panicking
// with a *Fault otherwise. Signatures with error types are only partially
// checked.
func Verify(sig *generics.GenericSignature) {
	sig = sig.Canonical()
	requirements := sig.Requirements()

	for i, req := range requirements {
		if i > 0 {
			if c := types.CompareRequirements(requirements[i-1], req); c > 0 {
				fail(sig, req, "requirements are out of order")
			} else if c == 0 {
				fail(sig, req, "duplicate requirement")
			}
		}

		if !types.IsTypeParameter(req.Subject) {
			fail(sig, req, "subject %v is not a type parameter", req.Subject)
		}

		if req.Constraint != nil && types.ContainsError(req.Constraint) {
			continue
		}

		switch req.Kind {
		case types.RequirementSameType:
			verifySameType(sig, req)
		default:
			if !sig.IsReducedType(req.Subject) {
				fail(sig, req, "subject %v is not reduced (reduces to %v)", req.Subject, sig.ReducedType(req.Subject))
			}

			if sig.IsConcreteType(req.Subject) {
				fail(sig, req, "concrete subject %v has other requirements", req.Subject)
			}
		}

		if !sig.IsRequirementSatisfied(req) {
			fail(sig, req, "requirement is not satisfied by its own signature")
		}
	}

	verifyChains(sig)
	verifyProtocols(sig)

	log.Debugf("verified %v", sig)
}

func verifySameType(sig *generics.GenericSignature, req types.Requirement) {
	if !sig.AreEqual(req.Subject, req.Constraint) {
		fail(sig, req, "same-type requirement does not hold")
	}

	if types.IsTypeParameter(req.Constraint) && types.CompareTypeParameters(req.Subject, req.Constraint) <= 0 {
		fail(sig, req, "same-type requirement is not oriented larger == smaller")
	}
}

// verifyChains checks that type parameters are made equal by a chain, not a
// tree: each type parameter is the smaller side at most once.
func verifyChains(sig *generics.GenericSignature) {
	var constraints []types.Type
	for _, req := range sig.Requirements() {
		if req.Kind != types.RequirementSameType || !types.IsTypeParameter(req.Constraint) {
			continue
		}

		constraint := req.Constraint
		if slices.Contains(constraints, constraint) {
			fail(sig, req, "same-type requirements branch at %v", req.Constraint)
		}

		constraints = append(constraints, constraint)
	}
}

// verifyProtocols checks that no type parameter conforms to a protocol
// that another of its conformances already implies.
func verifyProtocols(sig *generics.GenericSignature) {
	conformances := map[types.Type][]types.Requirement{}
	var subjects []types.Type
	for _, req := range sig.Requirements() {
		if req.Kind != types.RequirementConformance {
			continue
		}

		subject := req.Subject
		if _, ok := conformances[subject]; !ok {
			subjects = append(subjects, subject)
		}

		conformances[subject] = append(conformances[subject], req)
	}

	for _, subject := range subjects {
		reqs := conformances[subject]
		for _, left := range reqs {
			for _, right := range reqs {
				if left.Protocol() != right.Protocol() && left.Protocol().Inherits(right.Protocol()) {
					fail(sig, right, "%v is implied by %v", right.Protocol(), left.Protocol())
				}
			}
		}
	}
}

// FaultFact is attached to a declaration whose signature failed
// verification.
type FaultFact struct {
	Fault *Fault
}

func (fact FaultFact) String() string {
	return "failed verification: " + fact.Fault.Message
}

// Recover runs f and returns the *Fault it panics with, if any. Other panics
// are propagated.
func Recover(f func()) (fault *Fault) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			if fault, ok = r.(*Fault); !ok {
				panic(r)
			}
		}
	}()

	f()
	return nil
}
