package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	t.Run("redirects output", func(t *testing.T) {
		var got string
		SetLogger(func(format string, v ...interface{}) {
			got = fmt.Sprintf(format, v...)
		})
		Logf("placed %d objects", 7)
		assert.Equal(t, "placed 7 objects", got)
	})

	t.Run("nil installs no-op logger", func(t *testing.T) {
		SetLogger(nil)
		assert.NotPanics(t, func() { Logf("ignored %s", "message") })
	})
}
