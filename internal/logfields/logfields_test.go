package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
		val  string
	}{
		{Path("/guide/"), KeyPath, "/guide/"},
		{Locale("/ru/"), KeyLocale, "/ru/"},
		{Query("setup"), KeyQuery, "setup"},
		{SnapshotID("abc"), KeySnapshotID, "abc"},
		{Stage("scan"), KeyStage, "scan"},
		{File("index.md"), KeyFile, "index.md"},
	}
	for _, c := range cases {
		assert.Equal(t, c.key, c.attr.Key)
		assert.Equal(t, c.val, c.attr.Value.String())
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	assert.Equal(t, int64(3), Count(3).Value.Int64())
	assert.InDelta(t, 1.5, Duration(1500*time.Microsecond).Value.Float64(), 0.0001)
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Empty(t, Error(nil).Value.String())
}
