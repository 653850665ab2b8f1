// Package report renders a fitted design's score frame as a markdown table
// and as standalone HTML.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gotreat/domain/treatment"
)

// Markdown renders the score frame as a markdown document, sorted by
// significance with recommended variables marked.
func Markdown(title string, scores treatment.ScoreFrame) string {
	sorted := make(treatment.ScoreFrame, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Significance < sorted[j].Significance
	})

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d derived variables, %d recommended.\n\n", len(scores), len(scores.Recommended()))
	b.WriteString("| variable | origin | code | R² | significance | threshold | moves | recommended |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, row := range sorted {
		rec := ""
		if row.Recommended {
			rec = "yes"
		}
		moves := ""
		if row.Moves {
			moves = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %.4f | %.3g | %.3g | %s | %s |\n",
			row.Variable, row.Origin, row.Code, row.RSquared, row.Significance, row.Threshold, moves, rec)
	}
	return b.String()
}

// HTML renders the markdown report into a standalone HTML fragment
func HTML(title string, scores treatment.ScoreFrame) []byte {
	md := Markdown(title, scores)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return markdown.Render(doc, renderer)
}
