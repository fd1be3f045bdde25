// Package serialize writes built signatures to a CBOR archive, so that
// signatures from different runs can be compared by profile.
package serialize

import (
	"fmt"
	"slices"

	"gensig/generics"
	"gensig/types"

	"github.com/fxamacker/cbor/v2"
)

const Version = 1

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("serialize: failed to create CBOR enc mode: %v", err))
	}

	encMode = em
}

type Param struct {
	Depth int    `cbor:"depth"`
	Index int    `cbor:"index"`
	Pack  bool   `cbor:"pack,omitempty"`
	Name  string `cbor:"name,omitempty"`
}

type Requirement struct {
	Kind       string `cbor:"kind"`
	Subject    string `cbor:"subject"`
	Constraint string `cbor:"constraint,omitempty"`
	Layout     string `cbor:"layout,omitempty"`
}

// Record is a signature in its canonical form, keyed by its profile.
type Record struct {
	Name         string        `cbor:"name"`
	Profile      uint64        `cbor:"profile"`
	Signature    string        `cbor:"signature"`
	Params       []Param       `cbor:"params"`
	Requirements []Requirement `cbor:"requirements"`
}

func NewRecord(name string, sig *generics.GenericSignature) Record {
	canonical := sig.Canonical()

	record := Record{
		Name:      name,
		Profile:   sig.Profile(),
		Signature: canonical.String(),
	}

	for _, param := range canonical.Params() {
		record.Params = append(record.Params, Param{
			Depth: param.Depth,
			Index: param.Index,
			Pack:  param.IsPack,
		})
	}

	for _, req := range canonical.Requirements() {
		encoded := Requirement{
			Kind:    req.Kind.String(),
			Subject: req.Subject.String(),
		}

		if req.Kind == types.RequirementLayout {
			encoded.Layout = req.Layout.String()
		} else if req.Constraint != nil {
			encoded.Constraint = req.Constraint.String()
		}

		record.Requirements = append(record.Requirements, encoded)
	}

	return record
}

// Matches reports whether sig has the same canonical form as the record.
func (record Record) Matches(sig *generics.GenericSignature) bool {
	return record.Profile == sig.Profile() && record.Signature == sig.Canonical().String()
}

type Archive struct {
	Version int      `cbor:"version"`
	Records []Record `cbor:"records"`
}

func NewArchive() *Archive {
	return &Archive{Version: Version}
}

func (archive *Archive) Add(name string, sig *generics.GenericSignature) {
	archive.Records = append(archive.Records, NewRecord(name, sig))
}

// Lookup returns the records with the given profile, in the order they were
// added.
func (archive *Archive) Lookup(profile uint64) []Record {
	var records []Record
	for _, record := range archive.Records {
		if record.Profile == profile {
			records = append(records, record)
		}
	}

	return records
}

// Diff returns the names of the records whose signatures differ between two
// archives, and of those present in only one of them.
func Diff(left *Archive, right *Archive) []string {
	index := func(archive *Archive) map[string]Record {
		records := map[string]Record{}
		for _, record := range archive.Records {
			records[record.Name] = record
		}

		return records
	}

	leftRecords := index(left)
	rightRecords := index(right)

	var names []string
	for name, record := range leftRecords {
		if other, ok := rightRecords[name]; !ok || other.Profile != record.Profile || other.Signature != record.Signature {
			names = append(names, name)
		}
	}

	for name := range rightRecords {
		if _, ok := leftRecords[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)
	return names
}

func Marshal(archive *Archive) ([]byte, error) {
	return encMode.Marshal(archive)
}

func Unmarshal(data []byte) (*Archive, error) {
	var archive Archive
	if err := cbor.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("serialize: unmarshal archive: %w", err)
	}

	if archive.Version != Version {
		return nil, fmt.Errorf("serialize: unsupported archive version %d", archive.Version)
	}

	return &archive, nil
}
