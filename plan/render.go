package plan

import (
	"strings"

	"github.com/hupe1980/bridgescan/engine"
)

// RenderBitmapQual renders the qualifier implied by a bitmap subtree as
// a display expression: leaves become their index conditions, AND/OR
// combinators become parenthesized groups. Unknown node kinds are an
// internal invariant violation.
func RenderBitmapQual(n Node) (string, error) {
	switch node := n.(type) {
	case *BitmapIndexScan:
		return renderConds(node.Conds, " AND "), nil
	case *BitmapAnd:
		return renderCombinator(node.Children, " AND ")
	case *BitmapOr:
		return renderCombinator(node.Children, " OR ")
	default:
		return "", Internalf("cannot render qualifier for plan node %T", n)
	}
}

func renderCombinator(children []Node, sep string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		s, err := RenderBitmapQual(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// RenderConds renders a conjunction of conditions for display.
func RenderConds(conds []engine.Cond) string {
	return renderConds(conds, " AND ")
}

func renderConds(conds []engine.Cond, sep string) string {
	if len(conds) == 0 {
		return ""
	}
	if len(conds) == 1 {
		return conds[0].String()
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
