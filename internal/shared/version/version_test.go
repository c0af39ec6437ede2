package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "v1.2.3", Normalize("1.2.3"))
	assert.Equal(t, "v1.2.3", Normalize(" v1.2.3 "))
}

func TestString(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	Version, Commit = "dev", ""
	assert.Equal(t, "dev", String())

	Version = "1.4"
	assert.Equal(t, "v1.4.0", String())

	Commit = "abc1234"
	assert.Equal(t, "v1.4.0+abc1234", String())
}
