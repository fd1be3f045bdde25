package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"gensig/colors"
)

type Node interface {
	GetFacts() *Facts
}

type HiddenNode struct {
	Facts *Facts
}

func (node *HiddenNode) GetFacts() *Facts {
	return node.Facts
}

var hiddenNodes = map[reflect.Type]struct{}{
	reflect.TypeFor[*HiddenNode](): {},
}

func HideNode[T Node]() {
	hiddenNodes[reflect.TypeFor[T]()] = struct{}{}
}

func IsHiddenNode(node Node) bool {
	_, ok := hiddenNodes[reflect.TypeOf(node)]
	return ok
}

func DisplayNode(node Node) string {
	return fmt.Sprintf("%s %s", reflect.TypeOf(node).Elem().Name(), RenderNode(node))
}

func NodeSource(source string) string {
	source = DefinitionSource(source)
	source = regexp.MustCompile(`(?s)\{.*\}`).ReplaceAllString(source, "{⋯}") // collapse braces
	source = regexp.MustCompile(`(?s)\n.*`).ReplaceAllString(source, "⋯")     // collapse multiple lines
	source = regexp.MustCompile(`\s+`).ReplaceAllString(source, " ")

	return strings.TrimSpace(source)
}

func DefinitionSource(source string) string {
	source = regexp.MustCompile(`//.*\n`).ReplaceAllString(source, "") // strip comments
	return strings.TrimSpace(source)
}

func RenderNode(node Node) string {
	return RenderSource(node, NodeSource(GetSpanFact(node).Source))
}

func RenderDefinition(node Node) string {
	return RenderSource(node, DefinitionSource(GetSpanFact(node).Source))
}

func RenderSource(node Node, source string) string {
	if node != nil && !HideSpans {
		span := GetSpanFact(node)
		return fmt.Sprintf("%s %s", colors.Code(source), colors.Extra(span.String()))
	}

	return colors.Code(source)
}

type FilterFunc func(node Node) bool

func PathFilter(path string) FilterFunc {
	return func(node Node) bool {
		span := GetSpanFact(node)
		return span.Path == path
	}
}

// RangeFilter keeps nodes starting on lines start through end, inclusive.
func RangeFilter(path string, start int, end int) FilterFunc {
	return func(node Node) bool {
		span := GetSpanFact(node)
		return span.Path == path && span.Start.Line >= start && span.Start.Line <= end
	}
}

func LineFilter(path string, line int) FilterFunc {
	return func(node Node) bool {
		span := GetSpanFact(node)
		return span.Path == path && span.Start.Line == line
	}
}
