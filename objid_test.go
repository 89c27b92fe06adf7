package bms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseObjId(t *testing.T) {
	id, err := ParseObjId("A1")
	require.NoError(t, err)
	require.Equal(t, ObjId{'A', '1'}, id)

	_, err = ParseObjId("A")
	require.Error(t, err)

	_, err = ParseObjId("A1B")
	require.Error(t, err)

	_, err = ParseObjId("!!")
	require.Error(t, err)
}

func TestObjIdIsNone(t *testing.T) {
	require.True(t, NoneObjId.IsNone())
	id, _ := ParseObjId("00")
	require.True(t, id.IsNone())
	id2, _ := ParseObjId("01")
	require.False(t, id2.IsNone())
}

func TestObjIdBase36FoldsCase(t *testing.T) {
	upper, _ := ParseObjId("A1")
	lower, _ := ParseObjId("a1")
	require.True(t, upper.Equal(lower, Base36))
	require.False(t, upper.Equal(lower, Base62))
	require.Equal(t, upper.Index(Base36), lower.Index(Base36))
	require.NotEqual(t, upper.Index(Base62), lower.Index(Base62))
}

func TestObjIdKeyCanonicalizes(t *testing.T) {
	lower, _ := ParseObjId("z9")
	require.Equal(t, ObjId{'Z', '9'}, lower.Key(Base36))
	require.Equal(t, lower, lower.Key(Base62))
}

func TestFormatObjIdRoundTrips(t *testing.T) {
	for _, base := range []Base{Base36, Base62} {
		max := int(base) * int(base)
		for idx := 0; idx < max; idx += 7 {
			id, err := FormatObjId(idx, base)
			require.NoError(t, err)
			require.Equal(t, idx, id.Index(base))
		}
	}
}

func TestFormatObjIdRejectsOutOfRange(t *testing.T) {
	_, err := FormatObjId(-1, Base36)
	require.Error(t, err)
	_, err = FormatObjId(36*36, Base36)
	require.Error(t, err)
}

func TestObjIdLess(t *testing.T) {
	a, _ := ParseObjId("01")
	b, _ := ParseObjId("02")
	require.True(t, a.Less(b, Base36))
	require.False(t, b.Less(a, Base36))
}
