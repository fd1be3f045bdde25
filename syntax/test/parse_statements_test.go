package test

import (
	"testing"

	"gensig/database"
	"gensig/nodes/file"
	"gensig/nodes/statements"
	"gensig/nodes/types"
	"gensig/syntax"
)

func TestParseProtocol(t *testing.T) {
	syntax.TestParse(t, statements.ParseProtocolStatement, `
// A sequence of values
protocol Sequence {
  associatedtype Element
  associatedtype Iterator: IteratorProtocol where Iterator.Element == Element
}`)
}

func TestParseInheritingProtocol(t *testing.T) {
	syntax.TestParse(t, statements.ParseProtocolStatement, "protocol Hashable: Equatable")
}

func TestParseStruct(t *testing.T) {
	syntax.TestParse(t, statements.ParseNominalStatement, `
struct Array<Element>: Sequence {
  typealias Iterator = ArrayIterator<Element>
}`)
}

func TestParseClass(t *testing.T) {
	syntax.TestParse(t, statements.ParseNominalStatement, "class Derived<T>: Base<T>, Equatable where T: Hashable")
}

func TestParseExtension(t *testing.T) {
	syntax.TestParse(t, statements.ParseExtensionStatement, `
extension Array: Equatable where Element: Equatable {
  func contains(_ element: Element) -> Bool
}`)
}

func TestParseFunction(t *testing.T) {
	syntax.TestParse(t, statements.ParseFunctionStatement, "func f<T: Sequence, U>(x: T, y: Array<U>) -> U where T.Element == U")
}

func TestParsePackFunction(t *testing.T) {
	syntax.TestParse(t, statements.ParseFunctionStatement, "func zip<each T, each U>(_ t: T, _ u: U) where shape(T) == shape(U)")
}

func TestParseSignature(t *testing.T) {
	syntax.TestParse(t, statements.ParseSignatureStatement, "signature <τ_0_0, τ_0_1 where τ_0_0: Sequence, τ_0_0.[Sequence]Element == τ_0_1>")
}

func TestParseCheck(t *testing.T) {
	syntax.TestParse(t, statements.ParseCheckStatement, "check f<Array<Int>, Int>")
}

func TestParseFile(t *testing.T) {
	syntax.TestParse(t, file.ParseFile, `
protocol Equatable; struct Int: Equatable

// Generic over any equatable type
func f<T: Equatable>(x: T)
check f<Int>
`)
}

func TestParseConstrainedParameters(t *testing.T) {
	syntax.TestParse(t, statements.ParseFunctionStatement, "func f<S: Sequence, T: Equatable & Hashable>(s: S, t: T)")
}

func TestConstrainedParametersAreSeparate(t *testing.T) {
	db := database.NewDb(nil)

	function, err := syntax.Parse(db, "test", "func f<S: Sequence, T: Equatable & Hashable, U>(s: S, t: T, u: U)", statements.ParseFunctionStatement)
	if err != nil {
		t.Fatalf("syntax error: %v", err)
	}

	if len(function.Parameters) != 3 {
		t.Fatalf("expected three parameters, got %d", len(function.Parameters))
	}

	for i, want := range []int{1, 1, 0} {
		if got := len(function.Parameters[i].Inherited); got != want {
			t.Errorf("parameter %s: expected %d constraints, got %d", function.Parameters[i].Name, want, got)
		}
	}

	if _, ok := function.Parameters[1].Inherited[0].(*types.ExistentialTypeNode); !ok {
		t.Errorf("expected a composition, got %T", function.Parameters[1].Inherited[0])
	}
}
