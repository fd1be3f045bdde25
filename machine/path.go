package machine

import (
	"fmt"
	"strings"

	"gensig/types"
)

type PathStep struct {
	Subject  types.Type
	Protocol *types.ProtocolDecl
}

func (step PathStep) String() string {
	return fmt.Sprintf("(%v: %v)", step.Subject, step.Protocol)
}

// ConformancePath explains why a type parameter conforms to a protocol. The
// first step is one of the machine's own conformance requirements; each
// following step is an inherited protocol or an associated conformance of
// the step before.
type ConformancePath []PathStep

func (path ConformancePath) String() string {
	steps := make([]string, len(path))
	for i, step := range path {
		steps[i] = step.String()
	}

	return strings.Join(steps, " -> ")
}

type pathNode struct {
	step   PathStep
	parent *pathNode
}

// ConformancePath returns nil if the conformance does not hold abstractly,
// for example because t is bound to a concrete type. A conformance that only
// holds because t's superclass conforms also has no path, even though
// RequiresProtocol reports it.
func (m *Machine) ConformancePath(t types.Type, proto *types.ProtocolDecl) ConformancePath {
	requireTypeParameter(t)

	target := m.Reduce(t)
	if !types.IsTypeParameter(target) || !m.RequiresProtocol(target, proto) {
		return nil
	}

	type key struct {
		subject  types.Type
		protocol *types.ProtocolDecl
	}

	visited := map[key]struct{}{}
	var queue []*pathNode
	push := func(node *pathNode) {
		k := key{node.step.Subject, node.step.Protocol}
		if _, ok := visited[k]; ok {
			return
		}

		visited[k] = struct{}{}
		queue = append(queue, node)
	}

	for _, root := range m.roots {
		subject := m.Reduce(root.Subject)
		if types.IsTypeParameter(subject) {
			push(&pathNode{step: PathStep{Subject: subject, Protocol: root.Protocol()}})
		}
	}

	for len(queue) > 0 && len(visited) <= max(m.Limits.MaxSteps, 1) {
		node := queue[0]
		queue = queue[1:]

		if node.step.Subject == target && node.step.Protocol == proto {
			var path ConformancePath
			for n := node; n != nil; n = n.parent {
				path = append(ConformancePath{n.step}, path...)
			}

			return path
		}

		for _, inherited := range node.step.Protocol.Inherited {
			push(&pathNode{step: PathStep{Subject: node.step.Subject, Protocol: inherited}, parent: node})
		}

		for _, req := range node.step.Protocol.Requirements {
			if req.Kind != types.RequirementConformance {
				continue
			}

			subject := m.Reduce(substSelf(m.ctx, req, node.step.Subject).Subject)
			if types.MemberDepth(subject) > types.MemberDepth(target)+m.Limits.MaxDepth {
				continue
			}

			if types.IsTypeParameter(subject) {
				push(&pathNode{step: PathStep{Subject: subject, Protocol: req.Protocol()}, parent: node})
			}
		}
	}

	return nil
}
