package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/docshot/docshot/pkg/builder"
	"github.com/docshot/docshot/pkg/config"
	"github.com/docshot/docshot/pkg/directive"
)

func runBuild(cmd *cobra.Command, args []string) error {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	srcDir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(srcDir, "docshot.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		red.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	build, err := builder.New(cfg, srcDir)
	if err != nil {
		red.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	defer build.Close()

	md := newMarkdown(build)

	if err := writeThemeStyle(build.OutDir()); err != nil {
		red.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}

	docs, err := findDocuments(srcDir, build.OutDir())
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cyan.Fprintf(cmd.OutOrStdout(), "no markdown documents under %s\n", srcDir)
		return nil
	}

	var failed int
	for _, doc := range docs {
		if err := renderDocument(md, build, srcDir, doc); err != nil {
			failed++
			red.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", doc, err)
			if !keepGoing {
				return fmt.Errorf("build aborted: %w", err)
			}
			continue
		}
		green.Fprintf(cmd.OutOrStdout(), "ok   %s\n", doc)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	cyan.Fprintf(cmd.OutOrStdout(), "built %d documents into %s\n", len(docs), build.OutDir())
	return nil
}

func newMarkdown(build *builder.Build) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			directive.New(build),
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(chromahtml.WithLineNumbers(false)),
			),
		),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)
}

// themeStyle hides whichever capture of a light/dark pair does not match the
// reader's theme. An explicit data-theme attribute on the root element wins
// over the media preference.
const themeStyle = `@media (prefers-color-scheme: dark) {
  html:not([data-theme="light"]) .screenshot.only-light { display: none; }
}
@media (prefers-color-scheme: light) {
  html:not([data-theme="dark"]) .screenshot.only-dark { display: none; }
}
html[data-theme="dark"] .screenshot.only-light { display: none; }
html[data-theme="light"] .screenshot.only-dark { display: none; }
`

func writeThemeStyle(outDir string) error {
	dir := filepath.Join(outDir, "_static")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "screenshot-theme.css"), []byte(themeStyle), 0o644)
}

// findDocuments collects the markdown files under srcDir, skipping the output
// tree so repeated builds don't feed on their own results.
func findDocuments(srcDir, outDir string) ([]string, error) {
	var docs []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != srcDir && (path == outDir || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			docs = append(docs, path)
		}
		return nil
	})
	return docs, err
}

func renderDocument(md goldmark.Markdown, build *builder.Build, srcDir, path string) error {
	build.SetDocument(path)

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if err := md.Convert(source, &body); err != nil {
		return err
	}

	rel, err := filepath.Rel(srcDir, path)
	if err != nil {
		return err
	}
	outPath := filepath.Join(build.OutDir(), strings.TrimSuffix(rel, filepath.Ext(rel))+".html")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	up, err := filepath.Rel(filepath.Dir(path), srcDir)
	if err != nil {
		up = "."
	}
	cssHref := filepath.ToSlash(filepath.Join(up, "_static", "screenshot-theme.css"))

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return os.WriteFile(outPath, []byte(wrapPage(title, cssHref, body.String())), 0o644)
}

func wrapPage(title, cssHref, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<link rel="stylesheet" href="%s">
</head>
<body>
%s</body>
</html>
`, title, cssHref, body)
}
