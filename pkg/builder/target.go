package builder

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/docshot/docshot/pkg/localapp"
	"github.com/docshot/docshot/pkg/screenshot"
)

// ResolveTarget turns a directive target into a navigable URL.
//
// Supported forms:
//   - http:// and https:// URLs, passed through
//   - file:// URLs, passed through
//   - app://name/path, rewritten to the running local app instance
//     (starting it on first reference)
//   - /root-relative paths, resolved against the build source directory
//   - document-relative paths, resolved against the current document
//
// Anything else is a configuration error.
func ResolveTarget(target, srcDir, docDir string, apps *localapp.Registry) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", &screenshot.PipelineError{Kind: screenshot.ErrConfig, Target: target, Err: err}
	}

	switch parsed.Scheme {
	case "http", "https", "file":
		return target, nil

	case "app":
		handle, err := apps.Lookup(parsed.Host)
		if err != nil {
			return "", &screenshot.PipelineError{Kind: screenshot.ErrConfig, Target: target, Err: err}
		}
		rest := parsed.Path
		if parsed.RawQuery != "" {
			rest += "?" + parsed.RawQuery
		}
		return handle.BaseURL() + rest, nil

	case "":
		var path string
		if strings.HasPrefix(target, "/") {
			path = filepath.Join(srcDir, strings.TrimPrefix(target, "/"))
		} else {
			path = filepath.Join(docDir, target)
		}
		return "file://" + filepath.ToSlash(filepath.Clean(path)), nil

	default:
		return "", &screenshot.PipelineError{
			Kind:   screenshot.ErrConfig,
			Target: target,
			Err: fmt.Errorf("unsupported scheme %q: only http/https/file URLs, app:// references, "+
				"or root/document-relative file paths are supported", parsed.Scheme),
		}
	}
}
