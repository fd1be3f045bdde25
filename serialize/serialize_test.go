package serialize_test

import (
	"reflect"
	"testing"

	"gensig/generics"
	"gensig/machine"
	"gensig/serialize"
	"gensig/types"
)

func newSignatures() (*generics.GenericSignature, *generics.GenericSignature) {
	tc := types.NewContext()
	ctx := generics.NewContext(tc, machine.DefaultLimits())

	equatable := tc.DeclareProtocol("Equatable")
	t := tc.GenericParam(0, 0, false, "T")
	u := tc.GenericParam(0, 1, false, "U")

	constrained, _ := ctx.Build([]*types.GenericTypeParam{t, u}, []types.Requirement{
		types.ConformanceRequirement(tc, t, equatable),
		types.SameTypeRequirement(u, t),
	})

	// The same signature with different parameter names
	a := tc.GenericParam(0, 0, false, "A")
	b := tc.GenericParam(0, 1, false, "B")
	renamed, _ := ctx.Build([]*types.GenericTypeParam{a, b}, []types.Requirement{
		types.SameTypeRequirement(b, a),
		types.ConformanceRequirement(tc, a, equatable),
	})

	return constrained, renamed
}

func TestArchiveRoundTrip(t *testing.T) {
	constrained, renamed := newSignatures()

	archive := serialize.NewArchive()
	archive.Add("f", constrained)
	archive.Add("g", renamed)

	data, err := serialize.Marshal(archive)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := serialize.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(archive, decoded) {
		t.Fatalf("expected %+v, got %+v", archive, decoded)
	}

	records := decoded.Lookup(constrained.Profile())
	if len(records) != 2 {
		t.Fatalf("renamed signatures should share a profile, got %+v", records)
	}

	if !records[1].Matches(constrained) {
		t.Error("expected the renamed record to match")
	}

	if len(records[0].Params) != 2 || records[0].Params[1].Index != 1 {
		t.Errorf("unexpected params %+v", records[0].Params)
	}
}

func TestDiff(t *testing.T) {
	constrained, _ := newSignatures()
	empty := constrained.Context().Empty()

	left := serialize.NewArchive()
	left.Add("f", constrained)
	left.Add("g", empty)

	right := serialize.NewArchive()
	right.Add("f", empty)
	right.Add("g", empty)
	right.Add("h", empty)

	if diff := serialize.Diff(left, right); !reflect.DeepEqual(diff, []string{"f", "h"}) {
		t.Errorf("unexpected diff %v", diff)
	}
}

func TestUnmarshalRejectsOtherVersions(t *testing.T) {
	data, err := serialize.Marshal(&serialize.Archive{Version: serialize.Version + 1})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := serialize.Unmarshal(data); err == nil {
		t.Fatal("expected an error")
	}
}
