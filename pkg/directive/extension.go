package directive

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/docshot/docshot/pkg/builder"
)

// Extension wires the screenshot directive into a goldmark instance.
type Extension struct {
	build *builder.Build
}

// New creates the extension bound to a build. The build carries all capture
// state; one extension instance serves every document in the build.
func New(build *builder.Build) *Extension {
	return &Extension{build: build}
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(util.Prioritized(&transformer{}, 500)),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&Renderer{build: e.build}, 500)),
	)
}
