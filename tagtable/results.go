package tagtable

import "fmt"

// ResultKind says what a Result records.
type ResultKind uint8

const (
	// SpanResult is a (tag, left, right, children) record.
	SpanResult ResultKind = iota
	// TextResult is the matched text (AppendMatchedText).
	TextResult
	// ValueResult is the tag value itself (AppendTagValue).
	ValueResult
)

// String implements fmt.Stringer.
func (k ResultKind) String() string {
	switch k {
	case SpanResult:
		return "Span"
	case TextResult:
		return "Text"
	case ValueResult:
		return "Value"
	default:
		return fmt.Sprintf("ResultKind(%d)", k)
	}
}

// Result is one entry of a result list.
//
// For spans, Children is the result list of a Table or TableInList call,
// or nil when the instruction was not a table call or its results were
// recorded directly into the enclosing list.
type Result struct {
	Kind     ResultKind
	Tag      any
	Left     int
	Right    int
	Children *Results
	Text     string
}

// Span returns a span result.
func Span(tag any, left, right int, children *Results) Result {
	return Result{Kind: SpanResult, Tag: tag, Left: left, Right: right, Children: children}
}

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r.Kind {
	case TextResult:
		return fmt.Sprintf("%q", r.Text)
	case ValueResult:
		return fmt.Sprintf("%v", r.Tag)
	default:
		if r.Children == nil {
			return fmt.Sprintf("(%v, %d, %d, nil)", r.Tag, r.Left, r.Right)
		}
		return fmt.Sprintf("(%v, %d, %d, %v)", r.Tag, r.Left, r.Right, *r.Children)
	}
}

// Results is a result list. The engine appends to it on success and
// truncates it back on failure.
//
// A nil *Results discards results: instructions that would append to the
// list record nothing, while CallTag and AppendToTag instructions still
// run.
type Results []Result

// NewResults returns an empty result list.
func NewResults() *Results {
	return new(Results)
}

// Len returns the number of results; 0 for nil.
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(*r)
}

// Append implements Appender.
func (r *Results) Append(res Result) {
	*r = append(*r, res)
}

// Truncate shortens the list to n results.
func (r *Results) Truncate(n int) {
	if r == nil || n >= len(*r) {
		return
	}
	clear((*r)[n:])
	*r = (*r)[:n]
}

// Tags returns the tags of the top-level span results, in order.
func (r *Results) Tags() []any {
	if r == nil {
		return nil
	}
	tags := make([]any, 0, len(*r))
	for _, res := range *r {
		if res.Kind == SpanResult {
			tags = append(tags, res.Tag)
		}
	}
	return tags
}
