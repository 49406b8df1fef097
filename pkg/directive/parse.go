package directive

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/docshot/docshot/pkg/screenshot"
)

// figureKeys are the options passed through untouched to figure rendering.
var figureKeys = map[string]bool{
	"align":    true,
	"alt":      true,
	"caption":  true,
	"figclass": true,
	"figwidth": true,
	"height":   true,
	"loading":  true,
	"scale":    true,
	"target":   true,
	"width":    true,
}

// parseBody decodes a directive body into the resolver's raw options.
// Values stay textual; type coercion and enum validation are the resolver's
// job, so a bad value is reported the same way no matter where it came from.
func parseBody(body []byte) (screenshot.Raw, error) {
	var fields map[string]any
	if err := yaml.Unmarshal(body, &fields); err != nil {
		return screenshot.Raw{}, &screenshot.PipelineError{
			Kind: screenshot.ErrConfig,
			Err:  fmt.Errorf("malformed directive body: %w", err),
		}
	}

	var raw screenshot.Raw
	for key, value := range fields {
		switch key {
		case "url":
			raw.Target = asString(value)
		case "browser":
			raw.Browser = asString(value)
		case "color-scheme":
			raw.ColorScheme = asString(value)
		case "context":
			raw.Context = asString(value)
		case "viewport-width":
			raw.ViewportWidth = asString(value)
		case "viewport-height":
			raw.ViewportHeight = asString(value)
		case "device-scale-factor":
			raw.DeviceScaleFactor = asString(value)
		case "status-code":
			raw.StatusCode = asString(value)
		case "full-page":
			b, err := asBool(key, value)
			if err != nil {
				return screenshot.Raw{}, err
			}
			raw.FullPage = &b
		case "pdf":
			b, err := asBool(key, value)
			if err != nil {
				return screenshot.Raw{}, err
			}
			raw.PDF = b
		case "headers":
			raw.Headers = asString(value)
		case "interactions":
			raw.Interactions = asString(value)
		case "locale":
			raw.Locale = asString(value)
		case "timezone":
			raw.Timezone = asString(value)
		default:
			if !figureKeys[key] {
				return screenshot.Raw{}, &screenshot.PipelineError{
					Kind: screenshot.ErrConfig,
					Err:  fmt.Errorf("unrecognized screenshot option %q", key),
				}
			}
			if raw.Figure == nil {
				raw.Figure = make(map[string]string)
			}
			raw.Figure[key] = asString(value)
		}
	}

	if raw.Target == "" {
		return screenshot.Raw{}, &screenshot.PipelineError{
			Kind: screenshot.ErrConfig,
			Err:  fmt.Errorf("screenshot directive requires a url"),
		}
	}
	return raw, nil
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asBool(key string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b, nil
		}
	case nil:
		// bare "pdf:" reads as a flag, like the original directive syntax
		return true, nil
	}
	return false, &screenshot.PipelineError{
		Kind: screenshot.ErrConfig,
		Err:  fmt.Errorf("%s: %q is not a boolean", key, asString(value)),
	}
}
