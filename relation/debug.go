package relation

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/wbrown/relcore/value"
)

// DebugColor renders r as an indented tree, colorized the way the teacher's
// OutputFormatter colorizes relation/tuple-count summaries: node kind in
// blue, bindings in cyan. Per DESIGN.md, the Unit relation (empty Fixed,
// one empty row) gets special display here even though Join.Iter never
// special-cases it.
func DebugColor(r Relation, useColor bool) string {
	var b strings.Builder
	debugNode(&b, r, 0, useColor)
	return b.String()
}

func (f *Fixed) Debug() string   { return DebugColor(f, false) }
func (t *Triple) Debug() string  { return DebugColor(t, false) }
func (d *Derived) Debug() string { return DebugColor(d, false) }
func (r *Reorder) Debug() string { return DebugColor(r, false) }
func (f *Filter) Debug() string  { return DebugColor(f, false) }
func (j *Join) Debug() string    { return DebugColor(j, false) }

func debugNode(b *strings.Builder, r Relation, depth int, useColor bool) {
	indent := strings.Repeat("  ", depth)
	switch n := r.(type) {
	case *Fixed:
		if IsUnit(n) {
			fmt.Fprintf(b, "%s%s\n", indent, kindColor("Unit", useColor))
			return
		}
		fmt.Fprintf(b, "%s%s%s rows=%d\n", indent, kindColor("Fixed", useColor), bindingsColor(n.Bindings, useColor), len(n.Data))
	case *Triple:
		fmt.Fprintf(b, "%s%s attr=%s%s\n", indent, kindColor("Triple", useColor), n.Attr.ID, bindingsColor(n.Bindings[:], useColor))
	case *Derived:
		fmt.Fprintf(b, "%s%s store=%d%s\n", indent, kindColor("Derived", useColor), n.Store.ID(), bindingsColor(n.Bindings, useColor))
	case *Reorder:
		fmt.Fprintf(b, "%s%s%s\n", indent, kindColor("Reorder", useColor), bindingsColor(n.NewOrder, useColor))
		debugNode(b, n.Child, depth+1, useColor)
	case *Filter:
		fmt.Fprintf(b, "%s%s\n", indent, kindColor("Filter", useColor))
		debugNode(b, n.Parent, depth+1, useColor)
	case *Join:
		label := "Join"
		if len(n.Joiner.LeftKeys) == 0 {
			label = "CartesianJoin"
		}
		fmt.Fprintf(b, "%s%s left_keys=%v right_keys=%v\n", indent, kindColor(label, useColor), n.Joiner.LeftKeys, n.Joiner.RightKeys)
		debugNode(b, n.Left, depth+1, useColor)
		debugNode(b, n.Right, depth+1, useColor)
	default:
		fmt.Fprintf(b, "%s%T\n", indent, n)
	}
}

func kindColor(name string, useColor bool) string {
	if !useColor {
		return name
	}
	return color.BlueString(name)
}

func bindingsColor(bs []value.Binding, useColor bool) string {
	if len(bs) == 0 {
		return ""
	}
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = string(b)
	}
	joined := "[" + strings.Join(names, " ") + "]"
	if !useColor {
		return " " + joined
	}
	return " " + color.CyanString(joined)
}
