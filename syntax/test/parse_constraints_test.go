package test

import (
	"testing"

	"gensig/nodes/constraints"
	"gensig/syntax"
)

func TestParseConformanceConstraint(t *testing.T) {
	syntax.TestParse(t, constraints.ParseConstraint, "T: Sequence")
}

func TestParseLayoutConstraint(t *testing.T) {
	syntax.TestParse(t, constraints.ParseConstraint, "T.Element: _Trivial")
}

func TestParseSameTypeConstraint(t *testing.T) {
	syntax.TestParse(t, constraints.ParseConstraint, "T.Iterator.Element == Array<U>")
}

func TestParseSameShapeConstraint(t *testing.T) {
	syntax.TestParse(t, constraints.ParseConstraint, "shape(T) == shape(U)")
}
