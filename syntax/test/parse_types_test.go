package test

import (
	"testing"

	"gensig/nodes/types"
	"gensig/syntax"
)

func TestParseSimpleNamedType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "Int")
}

func TestParseGenericNamedType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "Dictionary<Key, Array<Value>>")
}

func TestParseCanonicalParameterType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "τ_0_1")
}

func TestParseMemberType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "T.Iterator.Element")
}

func TestParseQualifiedMemberType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "T.[Sequence]Element")
}

func TestParseTupleType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "(Int, T.Element)")
}

func TestParseEmptyTupleType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "()")
}

func TestParseParenthesizedType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "(Array<T>)")
}

func TestParseFunctionType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "(T, U) -> Array<T>")
}

func TestParseExistentialType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "any Hashable & AnyObject")
}

func TestParseCompositionType(t *testing.T) {
	syntax.TestParse(t, types.ParseType, "Equatable & Sequence")
}
