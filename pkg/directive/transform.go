package directive

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// transformer replaces ```screenshot fenced code blocks with directive nodes
// during parsing. The body is carried raw; decoding happens at render time.
type transformer struct{}

// Transform implements parser.ASTTransformer.
func (t *transformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var found []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if string(fcb.Language(source)) == "screenshot" {
			found = append(found, fcb)
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range found {
		block := NewBlock(blockText(fcb, source))
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, block)
	}
}
