package bms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObjTimeReducesToLowestTerms(t *testing.T) {
	a, err := NewObjTime(1, 2, 4)
	require.NoError(t, err)
	b, err := NewObjTime(1, 1, 2)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.Equal(t, a.String(), b.String())
}

func TestObjTimeOrdering(t *testing.T) {
	early, _ := NewObjTime(1, 1, 4)
	late, _ := NewObjTime(1, 3, 4)
	otherTrack, _ := NewObjTime(2, 0, 1)

	require.True(t, early.Less(late))
	require.False(t, late.Less(early))
	require.True(t, late.Less(otherTrack))
	require.Equal(t, 0, early.Compare(early))
}

func TestObjTimeRejectsInvalidInput(t *testing.T) {
	_, err := NewObjTime(1, 1, 0)
	require.Error(t, err)
	_, err = NewObjTime(1, 4, 4)
	require.Error(t, err)
	_, err = NewObjTime(1, -1, 4)
	require.Error(t, err)
}

func TestZeroObjTime(t *testing.T) {
	z, _ := NewObjTime(5, 0, 1)
	require.True(t, z.Equal(ZeroObjTime(5)))
}

func TestDecimalPreservesScale(t *testing.T) {
	d, err := ParseDecimal("155.50")
	require.NoError(t, err)
	require.Equal(t, "155.50", d.String())

	d2, err := ParseDecimal("120")
	require.NoError(t, err)
	require.Equal(t, "120", d2.String())
}

func TestDecimalExactComparison(t *testing.T) {
	a, _ := ParseDecimal("1.5")
	b, _ := ParseDecimal("3")
	// A parsed "3" and DecimalFromInt(3) are the same rational value and
	// compare equal exactly; 1.5 and 3 do not.
	three := DecimalFromInt(3)
	require.Equal(t, 0, b.Cmp(three))
	require.NotEqual(t, 0, a.Cmp(b))
}

func TestDecimalFromInt(t *testing.T) {
	d := DecimalFromInt(140)
	require.Equal(t, "140", d.String())
	require.False(t, d.IsZero())
	require.True(t, DecimalFromInt(0).IsZero())
}
