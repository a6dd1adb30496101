package explain

import (
	"fmt"

	"github.com/hupe1980/bridgescan/exec"
	"github.com/hupe1980/bridgescan/plan"
)

// ExplainCustomScan renders one custom bitmap-heap scan and its bitmap
// subtree into the output state.
//
// The walker drives recursion over the combinator tree itself so it
// can group children and inject per-index counters at the leaves. The
// generic node renderer would recurse too, so the walker temporarily
// zeroes each combinator's advertised child count around the generic
// call and restores it afterwards.
//
// Counters are present only for instrumented scans that were not
// restarted; a restarted scan releases them without reallocation, and
// the walker renders the tree without counter lines.
func ExplainCustomScan(st *State, ss *exec.ScanState) error {
	descr := ss.Rel().Descr()

	if st.Format() == FormatText {
		st.Line("Custom Scan (%s) on %s", ss.Strategy().Name(), descr.Name)
	} else {
		st.Property("Node Type", "Custom Scan")
		st.Property("Custom Plan Provider", ss.Strategy().Name())
		st.Property("Relation Name", descr.Name)
	}

	st.AddIndent(3)
	defer st.AddIndent(-3)

	if rc := ss.RecheckCond(); rc != "" {
		st.Property("Recheck Cond", rc)
	}
	if ss.Instrumented() {
		st.Property("Rows Removed by Index Recheck", ss.RowsRemovedByRecheck())
	}
	if filter := plan.RenderConds(ss.Qual()); filter != "" {
		st.Property("Filter", filter)
		if ss.Instrumented() {
			st.Property("Rows Removed by Filter", ss.RowsRemovedByFilter())
		}
	}

	w := &walker{st: st, ss: ss}
	st.OpenGroup("Plans")
	st.OpenGroup("")
	err := w.node(ss.BitmapState())
	st.CloseGroup()
	st.CloseGroup()
	return err
}

type walker struct {
	st *State
	ss *exec.ScanState
}

// combinatorState is the walker's view of AND/OR states: plan states
// that advertise a mutable child count to the generic renderer.
type combinatorState interface {
	exec.PlanState
	NPlans() int
	SetNPlans(int)
}

func (w *walker) node(ps exec.PlanState) error {
	switch s := ps.(type) {
	case *exec.BitmapAndState:
		return w.combinator(s, "Bitmap And")
	case *exec.BitmapOrState:
		return w.combinator(s, "Bitmap Or")
	case *exec.BitmapIndexScanState:
		return w.leaf(s)
	default:
		return plan.Internalf("cannot explain plan state %T", ps)
	}
}

func (w *walker) combinator(ps combinatorState, name string) error {
	saved := ps.NPlans()
	ps.SetNPlans(0)
	err := w.renderOne(ps, name, name)
	ps.SetNPlans(saved)
	if err != nil {
		return err
	}

	w.st.AddIndent(3)
	defer w.st.AddIndent(-3)

	w.st.OpenGroup("Plans")
	defer w.st.CloseGroup()
	for _, child := range ps.Children() {
		w.st.OpenGroup("")
		cerr := w.node(child)
		w.st.CloseGroup()
		if cerr != nil {
			return cerr
		}
	}
	return nil
}

func (w *walker) leaf(s *exec.BitmapIndexScanState) error {
	descr := w.ss.Rel().Descr()
	pos, ok := descr.IndexPosition(s.IndexID())
	if !ok {
		return plan.Internalf("explained index %d missing from table %q", s.IndexID(), descr.Name)
	}
	ix := &descr.Indexes[pos]

	if err := w.renderOne(s, fmt.Sprintf("Bitmap Index Scan on %s", ix.Name), "Bitmap Index Scan"); err != nil {
		return err
	}

	w.st.AddIndent(3)
	defer w.st.AddIndent(-3)

	if w.st.Format() != FormatText {
		w.st.Property("Index Name", ix.Name)
	}
	if cond := plan.RenderConds(s.Conds()); cond != "" {
		w.st.Property("Index Cond", cond)
	}
	if counters := w.ss.Counters(); counters != nil {
		w.st.Property("Index Scans", counters[pos].Scans)
		w.st.Property("Index Tuples", counters[pos].Tuples)
	}
	return nil
}

// renderOne emits a single node headline and, generically, recurses
// into the node's first NPlans children. The walker suppresses that
// recursion by zeroing NPlans first; it stays here so a node rendered
// outside the walker still shows its subtree.
func (w *walker) renderOne(ps exec.PlanState, text, nodeType string) error {
	if w.st.Format() == FormatText {
		w.st.Line("->  %s", text)
	} else {
		w.st.Property("Node Type", nodeType)
	}

	n := 0
	if c, ok := ps.(interface{ NPlans() int }); ok {
		n = c.NPlans()
	}
	if n == 0 {
		return nil
	}
	children := ps.Children()
	if n > len(children) {
		n = len(children)
	}

	w.st.AddIndent(3)
	defer w.st.AddIndent(-3)
	w.st.OpenGroup("Plans")
	defer w.st.CloseGroup()
	for _, child := range children[:n] {
		w.st.OpenGroup("")
		err := w.node(child)
		w.st.CloseGroup()
		if err != nil {
			return err
		}
	}
	return nil
}
