package scnpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuirksResolvedDefaultsToCCFC(t *testing.T) {
	var q Quirks
	assert.Equal(t, CCFC, q.Resolved())
	assert.Equal(t, SG, (SG).Resolved())
}

func TestQuirksHas(t *testing.T) {
	q := CCFC | XBox
	assert.True(t, q.Has(CCFC))
	assert.True(t, q.HasAny(XBox|SG))
	assert.False(t, q.Has(SG))
	assert.False(t, q.HasAny(SG|Phantom))
}

func TestParseQuirks(t *testing.T) {
	q, err := ParseQuirks("xbox-root2, lp")
	require.NoError(t, err)
	assert.True(t, q.Has(XBoxRoot))
	assert.True(t, q.Has(LP))

	q, err = ParseQuirks("")
	require.NoError(t, err)
	assert.Equal(t, CCFC, q)

	_, err = ParseQuirks("not-a-quirk")
	assert.Error(t, err)
}

func TestQuirksString(t *testing.T) {
	assert.Equal(t, "ccfc(default)", Quirks(0).String())
	assert.Contains(t, (SG2 | Phantom).String(), "sg2")
}
