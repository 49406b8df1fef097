package directive

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/docshot/docshot/pkg/screenshot"
)

// captureHost is the slice of builder.Build the renderer needs: deciding
// whether a directive expands to a theme pair, running captures, and turning
// emitted assets into hrefs.
type captureHost interface {
	DualTheme(raw screenshot.Raw) (bool, error)
	Capture(raw screenshot.Raw) (screenshot.AssetRef, error)
	AssetHref(name string) string
}

// Renderer renders directive blocks by running the capture pipeline and
// emitting a figure referencing the emitted asset. A failed directive aborts
// the document render with a typed error; the host decides whether the
// overall build continues.
type Renderer struct {
	build captureHost
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *Renderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(Kind, r.render)
}

func (r *Renderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*Block)

	raw, err := parseBody(block.Body)
	if err != nil {
		return ast.WalkStop, err
	}

	dual, err := r.build.DualTheme(raw)
	if err != nil {
		return ast.WalkStop, err
	}
	if dual {
		// An "auto" scheme renders as a light and a dark capture; the theme
		// stylesheet shows whichever matches the reader's preference.
		for _, scheme := range []screenshot.ColorScheme{screenshot.ColorSchemeLight, screenshot.ColorSchemeDark} {
			themed := raw
			themed.ColorScheme = string(scheme)
			if err := r.renderFigure(w, themed, "only-"+string(scheme)); err != nil {
				return ast.WalkStop, err
			}
		}
		return ast.WalkSkipChildren, nil
	}

	if err := r.renderFigure(w, raw, ""); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

func (r *Renderer) renderFigure(w io.Writer, raw screenshot.Raw, themeClass string) error {
	ref, err := r.build.Capture(raw)
	if err != nil {
		return err
	}
	return writeFigure(w, r.build.AssetHref(ref.Image), ref.ImageWidth, raw.Figure, themeClass)
}

// writeFigure emits the figure markup for a captured image. Recognized figure
// options map onto standard attributes; everything else was filtered by the
// parser already. A non-empty themeClass goes on both the figure and the
// image so theme-aware stylesheets can match either.
func writeFigure(w io.Writer, src string, imageWidth int, figure map[string]string, themeClass string) error {
	classes := []string{"screenshot"}
	if align := figure["align"]; align != "" {
		classes = append(classes, "align-"+align)
	}
	if figclass := figure["figclass"]; figclass != "" {
		classes = append(classes, figclass)
	}
	if themeClass != "" {
		classes = append(classes, themeClass)
	}

	var buf strings.Builder
	buf.WriteString(`<figure class="` + html.EscapeString(strings.Join(classes, " ")) + `"`)
	if figwidth := figure["figwidth"]; figwidth != "" {
		buf.WriteString(` style="width: ` + html.EscapeString(figwidth) + `"`)
	}
	buf.WriteString(">")

	if target := figure["target"]; target != "" {
		buf.WriteString(`<a href="` + html.EscapeString(target) + `">`)
	}

	buf.WriteString(`<img src="` + html.EscapeString(src) + `"`)
	if themeClass != "" {
		buf.WriteString(` class="` + html.EscapeString(themeClass) + `"`)
	}
	buf.WriteString(` alt="` + html.EscapeString(figure["alt"]) + `"`)
	for _, attr := range []string{"width", "height", "loading"} {
		if value := figure[attr]; value != "" {
			buf.WriteString(fmt.Sprintf(` %s="%s"`, attr, html.EscapeString(value)))
		}
	}
	if scale := figure["scale"]; scale != "" && figure["width"] == "" {
		pct, err := strconv.Atoi(strings.TrimSpace(scale))
		if err != nil || pct <= 0 {
			return &screenshot.PipelineError{
				Kind: screenshot.ErrConfig,
				Err:  fmt.Errorf("scale: %q is not a positive integer", scale),
			}
		}
		if imageWidth > 0 {
			// Scale against the image's own pixel width, not the container.
			buf.WriteString(fmt.Sprintf(` width="%d"`, imageWidth*pct/100))
		} else {
			buf.WriteString(fmt.Sprintf(` style="width: %d%%"`, pct))
		}
	}
	buf.WriteString(">")

	if figure["target"] != "" {
		buf.WriteString("</a>")
	}

	if caption := figure["caption"]; caption != "" {
		buf.WriteString("<figcaption>" + html.EscapeString(caption) + "</figcaption>")
	}
	buf.WriteString("</figure>\n")

	_, err := io.WriteString(w, buf.String())
	return err
}
