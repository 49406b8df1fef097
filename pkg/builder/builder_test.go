package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/pkg/screenshot"
)

func TestDualTheme(t *testing.T) {
	b := &Build{defaults: screenshot.NewDefaults()}

	dual, err := b.DualTheme(screenshot.Raw{Target: "http://www.example.com"})
	require.NoError(t, err)
	assert.False(t, dual, "light default renders a single capture")

	dual, err = b.DualTheme(screenshot.Raw{Target: "http://www.example.com", ColorScheme: "auto"})
	require.NoError(t, err)
	assert.True(t, dual)

	_, err = b.DualTheme(screenshot.Raw{Target: "http://www.example.com", ColorScheme: "sepia"})
	require.Error(t, err)
	assert.ErrorIs(t, err, screenshot.ErrConfig)
}

func TestDualTheme_DocumentDefault(t *testing.T) {
	def := screenshot.NewDefaults()
	def.ColorScheme = screenshot.ColorSchemeAuto
	b := &Build{defaults: def}

	dual, err := b.DualTheme(screenshot.Raw{Target: "http://www.example.com"})
	require.NoError(t, err)
	assert.True(t, dual, "auto document default expands without a directive value")

	dual, err = b.DualTheme(screenshot.Raw{Target: "http://www.example.com", ColorScheme: "dark"})
	require.NoError(t, err)
	assert.False(t, dual, "an explicit directive scheme overrides the auto default")
}
