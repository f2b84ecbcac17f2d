// Package debug formats a materialized snapshot of a relation as a
// markdown table and renders its tree with auto-detected color support,
// mirroring the teacher's executor/table_formatter.go and
// annotations/output.go.
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/relcore/relation"
	"github.com/wbrown/relcore/value"
)

// Table materializes every tuple r produces and formats it as a markdown
// table, reading at most maxRows tuples (0 means unbounded). The relation
// must already have had EliminateTempVars/FillPredicateBindingIndices run.
func Table(r relation.Relation, tx relation.SessionTx, maxRows int) (string, error) {
	bindings := r.BindingsAfterEliminate()
	it := relation.Iter(r, tx, nil, nil)
	defer it.Close()

	var tuples []value.Tuple
	for it.Next() {
		tuples = append(tuples, it.Tuple())
		if maxRows > 0 && len(tuples) >= maxRows {
			break
		}
	}
	if err := it.Err(); err != nil {
		return "", err
	}
	return formatTable(bindings, tuples), nil
}

func formatTable(bindings []value.Binding, tuples []value.Tuple) string {
	if len(tuples) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", bindings)
	}

	var out strings.Builder
	alignment := make([]tw.Align, len(bindings))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(&out,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, len(bindings))
	for i, b := range bindings {
		headers[i] = string(b)
	}
	table.Header(headers)

	for _, t := range tuples {
		row := make([]string, len(t))
		for j, v := range t {
			row[j] = formatValue(v)
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(&out, "\n_%d rows_\n", len(tuples))
	return out.String()
}

func formatValue(v value.Value) string {
	if v == nil {
		return "nil"
	}
	switch tv := v.(type) {
	case string:
		return tv
	case int64:
		return fmt.Sprintf("%d", tv)
	case float64:
		return fmt.Sprintf("%.2f", tv)
	case bool:
		return fmt.Sprintf("%t", tv)
	case time.Time:
		return tv.Format("2006-01-02 15:04:05")
	case value.EntityID:
		return tv.String()
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// Render writes r's colorized debug tree to w, auto-detecting color
// support from w the same way the teacher's NewOutputFormatter does.
func Render(w io.Writer, r relation.Relation) {
	fmt.Fprintln(w, relation.DebugColor(r, useColorFor(w)))
}

func useColorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return fd == uintptr(1) || fd == uintptr(2)
}
