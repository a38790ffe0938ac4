package extract

import (
	"iter"

	"github.com/dgallion1/thesischeck/internal/wordml"
)

// Walk yields every paragraph below body in reading order together with
// whether it sits inside a table. Tables nest at any depth; every other
// container (content controls, hyperlinks, smart tags) is descended
// transparently. Paragraphs are not descended into.
func Walk(body *wordml.Node) iter.Seq2[*wordml.Node, bool] {
	return func(yield func(*wordml.Node, bool) bool) {
		if body == nil {
			return
		}
		walk(body, false, yield)
	}
}

func walk(n *wordml.Node, inTable bool, yield func(*wordml.Node, bool) bool) bool {
	for _, c := range n.Children {
		switch c.Name {
		case "tbl":
			if !walk(c, true, yield) {
				return false
			}
		case "p":
			if !yield(c, inTable) {
				return false
			}
		default:
			if !walk(c, inTable, yield) {
				return false
			}
		}
	}
	return true
}
