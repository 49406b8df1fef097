// Package directive integrates the screenshot pipeline with a goldmark
// document build. A fenced code block whose info string is "screenshot" is
// treated as a directive: its YAML body names the target and options, and the
// rendered document gets a figure embedding the captured image.
//
//	```screenshot
//	url: http://www.example.com
//	viewport-width: 1280
//	caption: The example.com front page.
//	```
package directive

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
)

// Kind is the node kind of a screenshot directive block.
var Kind = ast.NewNodeKind("Screenshot")

// Block is a screenshot directive lifted out of a fenced code block. The body
// stays raw until render time so parse errors surface through the renderer,
// where they can carry document context.
type Block struct {
	ast.BaseBlock
	Body []byte
}

// NewBlock creates a directive block with the given body text.
func NewBlock(body []byte) *Block {
	return &Block{Body: body}
}

// Kind implements ast.Node.
func (n *Block) Kind() ast.NodeKind { return Kind }

// Dump implements ast.Node.
func (n *Block) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Body": string(n.Body),
	}, nil)
}

// blockText joins the source lines of a fenced code block.
func blockText(fcb *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.Bytes()
}
