package hashengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagCombinators(t *testing.T) {
	f := FlagDefault.With(FlagFullMem).With(FlagLargePages)
	assert.True(t, f.Has(FlagFullMem))
	assert.True(t, f.Has(FlagLargePages))
	assert.False(t, f.Has(FlagJIT))

	f = f.Without(FlagFullMem)
	assert.False(t, f.Has(FlagFullMem))
	assert.True(t, f.Has(FlagLargePages))
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "default", FlagDefault.String())
	assert.Equal(t, "large_pages|full_mem", (FlagLargePages | FlagFullMem).String())
}
