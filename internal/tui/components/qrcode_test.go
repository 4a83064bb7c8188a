package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressQR(t *testing.T) {
	out, err := AddressQR("0xABCDEF1234567890ABCDEF1234567890ABCDEF12")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 10)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "QR rows have equal width")
	}
}

func TestSpinner_OnlyTicksWhileActive(t *testing.T) {
	s := NewSpinner("Connecting...")
	assert.False(t, s.Active())
	assert.Nil(t, s.Update(nil))

	require.NotNil(t, s.Start())
	assert.Nil(t, s.Start(), "second start does not schedule another tick")
	assert.True(t, s.Active())
	assert.Contains(t, s.View(), "Connecting...")

	s.Stop()
	assert.False(t, s.Active())
}
