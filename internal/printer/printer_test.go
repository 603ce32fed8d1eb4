package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	restore := SetOutput(out, errOut)
	t.Cleanup(func() {
		restore()
		color.NoColor = prev
	})
	return out, errOut
}

func TestSuccess(t *testing.T) {
	out, _ := capture(t)

	Success("classified %d files\n", 3)
	Success("✓ already prefixed\n")
	assert.Equal(t, "✓ classified 3 files\n✓ already prefixed\n", out.String())
}

func TestWarningGoesToStderr(t *testing.T) {
	out, errOut := capture(t)

	Warning("cyclic constraints: %s\n", "a -> b -> a")
	assert.Empty(t, out.String())
	assert.Equal(t, "⚠️  cyclic constraints: a -> b -> a\n", errOut.String())
}

func TestError(t *testing.T) {
	t.Run("single suggestion", func(t *testing.T) {
		_, errOut := capture(t)

		err := Error("cannot read /x", "permission denied", []string{"Check the file mode"})
		assert.EqualError(t, err, "cannot read /x")
		assert.Equal(t, "cannot read /x\n\npermission denied\n\nCheck the file mode\n", errOut.String())
	})

	t.Run("several suggestions", func(t *testing.T) {
		_, errOut := capture(t)

		Error("no config", "filedock.yml not found", []string{"filedock init", "--config path"})
		assert.Contains(t, errOut.String(), "Either:\n  1. filedock init\n  2. --config path\n")
	})
}

func TestErrorWithContextSortsKeys(t *testing.T) {
	_, errOut := capture(t)

	ErrorWithContext("redis unreachable", "", map[string]string{"url": "redis://x", "instance": "default"}, nil)
	assert.Equal(t, "redis unreachable\n\n\n  instance: default\n  url: redis://x\n", errOut.String())
}
