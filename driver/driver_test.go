package driver_test

import (
	"slices"
	"strings"
	"testing"

	"gensig/database"
	"gensig/driver"
	"gensig/feedback"
	"gensig/generics"
	"gensig/machine"
	"gensig/nodes/file"
	"gensig/syntax"
	"gensig/verify"
	"gensig/visit"
)

const source = `
protocol Equatable
protocol Hashable: Equatable
protocol Sequence {
  associatedtype Element
}

struct Int: Hashable
struct Set<Element> where Element: Hashable
struct Array<Element>

func identity<T>(x: T) -> T
func unique<T>(x: Set<T>)
func first<S: Sequence>(s: S) where S.Element: Equatable
func redundant<T: Hashable>(x: T) where T: Equatable

check unique<Int>
check unique<Array<Int>>
check identity<Int, Int>
`

type compiled struct {
	db         *database.Db
	filter     func(node database.Node) bool
	signatures map[string]driver.NamedSignature
}

func compile(t *testing.T, source string) compiled {
	t.Helper()

	db, root := driver.MakeRoot(machine.DefaultLimits())

	f, err := syntax.Parse(db, "test.gsig", source, file.ParseFile)
	if err != nil {
		t.Fatalf("syntax error: %v", err)
	}

	files := []*file.FileNode{f}
	driver.Compile(db, root, files, driver.Options{Verify: true, Minimality: true})

	filter := driver.FileFilter(files)

	signatures := map[string]driver.NamedSignature{}
	for _, named := range driver.Signatures(db, filter) {
		signatures[named.Name] = named
	}

	return compiled{db: db, filter: filter, signatures: signatures}
}

func (c compiled) signature(t *testing.T, name string) *generics.GenericSignature {
	t.Helper()

	named, ok := c.signatures[name]
	if !ok {
		t.Fatalf("no signature for %s", name)
	}

	if _, ok := database.GetFact[verify.FaultFact](named.Node); ok {
		t.Fatalf("%s failed verification", name)
	}

	return named.Signature
}

func TestCompileSignatures(t *testing.T) {
	c := compile(t, source)

	expected := map[string]string{
		"identity":  "<T>",
		"unique":    "<T where T: Hashable>",
		"redundant": "<T where T: Hashable>",
		"Set":       "<Element where Element: Hashable>",
		"Array":     "<Element>",
	}

	for name, want := range expected {
		if got := c.signature(t, name).String(); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}

	first := c.signature(t, "first")
	s := first.Params()[0]
	if !first.RequiresProtocol(s, c.signatures["Sequence"].Signature.Requirements()[0].Protocol()) {
		t.Errorf("expected S: Sequence in %v", first)
	}

	if len(first.Requirements()) != 2 {
		t.Errorf("expected two requirements in %v", first)
	}
}

func TestCompileRedundantRequirements(t *testing.T) {
	c := compile(t, source)

	fact, ok := database.GetFact[verify.RedundantRequirementsFact](c.signatures["redundant"].Node)
	if !ok || len(fact) != 1 {
		t.Fatalf("expected one redundant requirement, got %v", fact)
	}

	if fact[0].Requirement.Protocol().Name != "Equatable" {
		t.Errorf("expected T: Equatable to be redundant, got %v", fact[0].Requirement)
	}

	for _, name := range []string{"identity", "unique", "first", "Set"} {
		if _, ok := database.GetFact[verify.RedundantRequirementsFact](c.signatures[name].Node); ok {
			t.Errorf("%s should have no redundant requirements", name)
		}
	}
}

func TestCompileChecks(t *testing.T) {
	c := compile(t, source)

	var facts []visit.CheckFact
	database.ContainsFact(c.db, func(node database.Node, fact visit.CheckFact) (struct{}, bool) {
		facts = append(facts, fact)
		return struct{}{}, false
	})

	if len(facts) != 3 {
		t.Fatalf("expected three checks, got %v", facts)
	}

	if !facts[0].Ok() {
		t.Errorf("unique<Int> should pass, got %v", facts[0])
	}

	if facts[1].Ok() || facts[1].Result.Kind != generics.RequirementFailure {
		t.Errorf("unique<Array<Int>> should fail, got %v", facts[1])
	}

	if !facts[2].Mismatch || facts[2].Expected != 1 {
		t.Errorf("identity<Int, Int> has too many arguments, got %v", facts[2])
	}
}

func TestCompileFeedback(t *testing.T) {
	c := compile(t, `
struct Box<T> where T: Missing
func f<T>(x: Box<T, T>)
`)

	var ids []string
	for _, item := range feedback.Collect(c.db, c.filter, func(item feedback.FeedbackItem) bool { return true }) {
		ids = append(ids, item.Id)
	}

	for _, id := range []string{"unresolved", "invalid-requirement", "extra-type"} {
		if !slices.Contains(ids, id) {
			t.Errorf("expected %s feedback, got %v", id, ids)
		}
	}
}

func TestLayersSeeEarlierDeclarations(t *testing.T) {
	db, root := driver.MakeRoot(machine.DefaultLimits())

	lib, err := syntax.Parse(db, "lib.gsig", "protocol Equatable\nstruct Int: Equatable", file.ParseFile)
	if err != nil {
		t.Fatal(err)
	}

	driver.Compile(db, root, []*file.FileNode{lib}, driver.Options{})

	main, err := syntax.Parse(db, "main.gsig", "func f<T: Equatable>(x: T)\ncheck f<Int>", file.ParseFile)
	if err != nil {
		t.Fatal(err)
	}

	files := []*file.FileNode{main}
	driver.Compile(db, root, files, driver.Options{Verify: true})

	signatures := driver.Signatures(db, driver.FileFilter(files))
	if len(signatures) != 1 || signatures[0].Signature.String() != "<T where T: Equatable>" {
		t.Fatalf("unexpected signatures %v", signatures)
	}

	checked := false
	database.ContainsFact(db, func(node database.Node, fact visit.CheckFact) (struct{}, bool) {
		checked = fact.Ok()
		return struct{}{}, true
	})

	if !checked {
		t.Error("expected f<Int> to pass")
	}
}

func TestMachineViews(t *testing.T) {
	c := compile(t, source)

	graphs := driver.Graphs(c.db, c.filter)
	graph, ok := graphs["unique"]
	if !ok || len(graph.Nodes) == 0 {
		t.Fatalf("expected a graph for unique, got %v", graphs)
	}

	var buf strings.Builder
	driver.WriteMachines(c.db, c.filter, &buf)

	if !strings.Contains(buf.String(), "unique") || !strings.Contains(buf.String(), "Hashable") {
		t.Errorf("unexpected machine dump:\n%s", buf.String())
	}
}

func TestCompileConstrainedParameters(t *testing.T) {
	c := compile(t, `
protocol Equatable
protocol Sequence {
  associatedtype Element
}

func zipped<S: Sequence, T: Sequence>(s: S, t: T) where S.Element == T.Element
func both<T: Equatable & Sequence>(t: T)
`)

	if got := c.signature(t, "zipped").String(); got != "<S, T where S: Sequence, T: Sequence, S.[Sequence]Element == T.[Sequence]Element>" {
		t.Errorf("unexpected signature %s", got)
	}

	if got := c.signature(t, "both").String(); got != "<T where T: Equatable, T: Sequence>" {
		t.Errorf("unexpected signature %s", got)
	}
}

func TestCompileConflictingRequirements(t *testing.T) {
	c := compile(t, `
protocol Equatable
struct Int
struct String

func conflicting<T>(x: T) where T == Int, T == String
func nonconforming<T>(x: T) where T == Int, T: Equatable
func fine<T>(x: T) where T == Int
`)

	conflicted := map[database.Node]bool{}
	for _, item := range feedback.Collect(c.db, c.filter, func(item feedback.FeedbackItem) bool { return true }) {
		if item.Id == "conflicting-requirements" {
			conflicted[item.On[0]] = true
		}
	}

	for _, name := range []string{"conflicting", "nonconforming"} {
		named, ok := c.signatures[name]
		if !ok {
			t.Fatalf("no signature for %s", name)
		}

		if !conflicted[named.Node] {
			t.Errorf("expected conflicting-requirements feedback on %s", name)
		}

		fact, _ := database.GetFact[visit.SignatureFact](named.Node)
		if !fact.Errors.Has(generics.HasInvalidRequirements) || len(fact.Conflicts) == 0 {
			t.Errorf("%s: expected recorded conflicts, got %v", name, fact)
		}
	}

	if conflicted[c.signatures["fine"].Node] {
		t.Error("fine has no conflicting requirements")
	}
}

func TestParseFilter(t *testing.T) {
	at := func(path string, line int) database.Node {
		return &database.HiddenNode{Facts: database.NewFacts(database.Span{
			Path:  path,
			Start: database.Location{Line: line, Column: 1},
			End:   database.Location{Line: line, Column: 1},
		})}
	}

	cases := []struct {
		entry string
		keeps []database.Node
		drops []database.Node
	}{
		{"a.gsig", []database.Node{at("a.gsig", 1), at("a.gsig", 9)}, []database.Node{at("b.gsig", 1)}},
		{"a.gsig:3", []database.Node{at("a.gsig", 3)}, []database.Node{at("a.gsig", 4), at("b.gsig", 3)}},
		{"a.gsig:3-5", []database.Node{at("a.gsig", 3), at("a.gsig", 5)}, []database.Node{at("a.gsig", 2), at("a.gsig", 6)}},
		{"7", []database.Node{at("last.gsig", 7)}, []database.Node{at("a.gsig", 7)}},
		{"7-8", []database.Node{at("last.gsig", 8)}, []database.Node{at("last.gsig", 9)}},
	}

	for _, c := range cases {
		filter, ok := driver.ParseFilter(c.entry, "last.gsig")
		if !ok {
			t.Errorf("%s: expected a filter", c.entry)
			continue
		}

		for _, node := range c.keeps {
			if !filter(node) {
				t.Errorf("%s should keep %v", c.entry, database.GetSpanFact(node))
			}
		}

		for _, node := range c.drops {
			if filter(node) {
				t.Errorf("%s should drop %v", c.entry, database.GetSpanFact(node))
			}
		}
	}

	for _, entry := range []string{"a.gsig:x", "a.gsig:5-3", ""} {
		if _, ok := driver.ParseFilter(entry, "last.gsig"); ok {
			t.Errorf("%q should not be a filter", entry)
		}
	}

	if _, ok := driver.ParseFilter("3", ""); ok {
		t.Error("a bare line needs a file")
	}
}

func TestSyntaxErrorFeedback(t *testing.T) {
	db, _ := driver.MakeRoot(machine.DefaultLimits())

	if _, err := syntax.Parse(db, "broken.gsig", "func f<T(x: T)", file.ParseFile); err == nil {
		t.Fatal("expected a syntax error")
	}

	items := feedback.Collect(db, func(node database.Node) bool { return true }, func(item feedback.FeedbackItem) bool {
		return item.Id == "syntax-error"
	})

	if len(items) != 1 {
		t.Fatalf("expected one syntax error, got %d", len(items))
	}
}
