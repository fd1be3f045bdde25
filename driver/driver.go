package driver

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"gensig/colors"
	"gensig/database"
	"gensig/feedback"
	"gensig/generics"
	"gensig/machine"
	"gensig/nodes/file"
	"gensig/queries"
	"gensig/types"
	"gensig/verify"
	"gensig/visit"

	"github.com/charmbracelet/x/ansi"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gensig.driver")

type RootNode struct {
	Files        []*file.FileNode
	Ctx          *generics.Context
	Conformances []visit.DeclaredConformance
	Facts        *database.Facts
}

func init() {
	database.HideNode[*RootNode]()
}

func (node *RootNode) GetFacts() *database.Facts {
	return node.Facts
}

func (node *RootNode) Visit(visitor *visit.Visitor) {
	for _, file := range node.Files {
		visitor.Visit(file)
	}
}

type TopLevelScopes []visit.Scope

func (fact TopLevelScopes) String() string {
	return "has top-level scopes"
}

func NewRoot(db *database.Db, limits machine.Limits) *RootNode {
	root := &RootNode{
		Ctx:   generics.NewContext(types.NewContext(), limits),
		Facts: database.EmptyFacts(),
	}

	db.Register(root)
	return root
}

func MakeRoot(limits machine.Limits) (*database.Db, *RootNode) {
	db := database.NewDb(nil)
	root := NewRoot(db, limits)
	return db, root
}

type Options struct {
	// Verify checks every built signature for minimal canonical form.
	Verify bool

	// Minimality reports written requirements implied by the others.
	Minimality bool
}

// Compile visits a layer of files on top of the layers already in root,
// building the signature of every declaration.
func Compile(db *database.Db, root *RootNode, files []*file.FileNode, options Options) {
	root.Files = append(root.Files, files...)

	nodeIsFromFiles := FileFilter(files)

	// Define and resolve names, then build signatures phase by phase

	topLevelScopes, _ := database.GetFact[TopLevelScopes](root)

	visitor := visit.NewVisitor(db, root.Ctx, topLevelScopes)
	for _, file := range files {
		visitor.Visit(file)
	}

	topLevel := visitor.Finish()

	topLevelScopes = append(topLevelScopes, topLevel)
	database.SetFact(root, topLevelScopes)

	// Check for overlapping conformances, including those from earlier layers

	root.Conformances = append(root.Conformances, visitor.Conformances...)
	visit.CheckForOverlappingConformances(root.Conformances)

	if !options.Verify && !options.Minimality {
		return
	}

	verified := map[*generics.GenericSignature]struct{}{}
	database.ContainsFact(db, func(node database.Node, fact visit.SignatureFact) (struct{}, bool) {
		if !nodeIsFromFiles(node) || fact.Errors != 0 {
			return struct{}{}, false
		}

		if options.Minimality && len(fact.Explicit) > 0 {
			if diagnostics := verify.Redundant(fact.Signature, fact.Inputs, fact.Explicit); len(diagnostics) > 0 {
				database.SetFact(node, verify.RedundantRequirementsFact(diagnostics))
			}
		}

		// Members without their own parameters share their parent's signature
		if _, ok := verified[fact.Signature]; ok || !options.Verify {
			return struct{}{}, false
		}
		verified[fact.Signature] = struct{}{}

		fault := verify.Recover(func() {
			verify.Verify(fact.Signature)

			if diagnostics := verify.ValidateMinimality(fact.Signature); len(diagnostics) > 0 {
				panic(&verify.Fault{
					Signature:   fact.Signature,
					Requirement: diagnostics[0].Requirement,
					Message:     "built signature is not minimal",
				})
			}
		})

		if fault != nil {
			log.Errorf("%s: %v", database.DisplayNode(node), fault)
			database.SetFact(node, verify.FaultFact{Fault: fault})
		}

		return struct{}{}, false
	})
}

// FileFilter matches the nodes parsed from one of the files.
func FileFilter(files []*file.FileNode) func(node database.Node) bool {
	return func(node database.Node) bool {
		span := database.GetSpanFact(node)
		return slices.ContainsFunc(files, func(file *file.FileNode) bool {
			return span.Path == database.GetSpanFact(file).Path
		})
	}
}

// ParseFilter reads a `--filter-lines` entry: `path`, `path:line`,
// `path:start-end`, or a bare `line` or `start-end` in the last file.
func ParseFilter(entry string, lastPath string) (database.FilterFunc, bool) {
	entry = strings.Trim(entry, " =")

	path, lines, found := strings.Cut(entry, ":")
	if !found {
		if _, err := strconv.Atoi(strings.SplitN(entry, "-", 2)[0]); err != nil {
			return database.PathFilter(entry), entry != ""
		}

		path, lines = lastPath, entry
	}

	if path == "" {
		return nil, false
	}

	start, end, isRange := strings.Cut(lines, "-")

	first, err := strconv.Atoi(start)
	if err != nil {
		return nil, false
	}

	if !isRange {
		return database.LineFilter(path, first), true
	}

	last, err := strconv.Atoi(end)
	if err != nil || last < first {
		return nil, false
	}

	return database.RangeFilter(path, first, last), true
}

type NamedSignature struct {
	Name      string
	Node      database.Node
	Signature *generics.GenericSignature
}

// Signatures returns the signature of every declaration, in source order.
// Declarations are named after their definition, or their location if they
// don't define anything.
func Signatures(db *database.Db, filter func(node database.Node) bool) []NamedSignature {
	var signatures []NamedSignature
	for _, node := range sortedNodes(db, filter) {
		queries.Signature(db, node, filter, func(sig *generics.GenericSignature) {
			name := database.GetSpanFact(node).String()
			queries.Documentation(db, node, filter, func(definition string, data queries.DocumentationData) {
				name = definition
			})

			signatures = append(signatures, NamedSignature{Name: name, Node: node, Signature: sig})
		})
	}

	return signatures
}

func sortedNodes(db *database.Db, filter func(node database.Node) bool) []database.Node {
	var nodes []database.Node
	database.ContainsNode(db, func(node database.Node) bool {
		if !database.IsHiddenNode(node) && filter(node) {
			nodes = append(nodes, node)
		}

		return false
	})

	slices.SortStableFunc(nodes, func(left database.Node, right database.Node) int {
		return database.CompareSpans(database.GetSpanFact(left), database.GetSpanFact(right))
	})

	return nodes
}

// WriteSignatures writes the signature of every declaration and the outcome
// of every `check` statement, in source order.
func WriteSignatures(db *database.Db, filter func(node database.Node) bool, w io.Writer) {
	for _, node := range sortedNodes(db, filter) {
		queries.Signature(db, node, filter, func(sig *generics.GenericSignature) {
			if _, err := fmt.Fprintf(w, "%s\n  %s\n", database.RenderNode(node), colors.Code(sig.String())); err != nil {
				panic(err)
			}
		})

		if fact, ok := database.GetFact[visit.CheckFact](node); ok {
			if _, err := fmt.Fprintf(w, "%s\n  %s\n", database.RenderNode(node), fact.String()); err != nil {
				panic(err)
			}
		}
	}
}

// WriteMachines writes the equivalence classes behind every declaration's
// signature.
func WriteMachines(db *database.Db, filter func(node database.Node) bool, w io.Writer) {
	for _, named := range Signatures(db, filter) {
		if _, err := fmt.Fprintf(w, "%s %s\n", colors.Title(named.Name), colors.Code(named.Signature.String())); err != nil {
			panic(err)
		}

		var buf bytes.Buffer
		named.Signature.Machine().Dump(&buf)

		for line := range strings.Lines(buf.String()) {
			if _, err := fmt.Fprintf(w, "  %s", line); err != nil {
				panic(err)
			}
		}
	}
}

// Graphs exports the machine of every declaration's signature, keyed by
// declaration name.
func Graphs(db *database.Db, filter func(node database.Node) bool) map[string]*database.Graph {
	graphs := map[string]*database.Graph{}
	for _, named := range Signatures(db, filter) {
		graphs[named.Name] = named.Signature.Machine().Graph()
	}

	return graphs
}

func WriteFeedback(db *database.Db, filter func(node database.Node) bool, filterFeedback []string, w io.Writer) int {
	seenFeedback := map[database.Node][]string{}
	feedbackCount := 0
	items := feedback.Collect(db, filter, func(item feedback.FeedbackItem) bool {
		if len(filterFeedback) > 0 && !slices.Contains(filterFeedback, item.Id) {
			return false
		}

		if database.IsHiddenNode(item.On[0]) || !filter(item.On[0]) {
			return false
		}

		if slices.Contains(seenFeedback[item.On[0]], item.Id) {
			return false
		}

		seenFeedback[item.On[0]] = append(seenFeedback[item.On[0]], item.Id)

		return true
	})

	for _, item := range items {
		indent := "  "

		rendered := ansi.Wordwrap(item.String(), 100-len(indent), " ")
		for i, line := range strings.Split(rendered, "\n") {
			if i > 0 {
				rendered += "\n" + indent
			} else {
				rendered = indent
			}

			rendered += line
		}

		if feedbackCount == 0 {
			_, err := fmt.Fprintf(w, "\n%s\n\n", colors.Title("Feedback:"))
			if err != nil {
				panic(err)
			}
		}

		_, err := fmt.Fprintf(w, "%s (%s):\n\n%s\n\n", database.RenderNode(item.On[0]), item.Id, rendered)
		if err != nil {
			panic(err)
		}

		feedbackCount++
	}

	return feedbackCount
}
