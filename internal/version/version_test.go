package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolved_PrefersLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v9.9.9"
	assert.Equal(t, "v9.9.9", Resolved())
	assert.Contains(t, String(), "docsite v9.9.9")
}

func TestResolved_NeverEmpty(t *testing.T) {
	assert.NotEmpty(t, Resolved())
	assert.NotEmpty(t, BuildTime)
	assert.NotEmpty(t, GitCommit)
}
