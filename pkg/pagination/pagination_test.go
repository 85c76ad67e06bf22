package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "p" + strconv.Itoa(i)
	}
	return out
}

func identity(s string) string { return s }

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	require.Equal(t, 7, NormalizeLimit(7))
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{Offset: 4, ID: "abc"})
	got, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.Equal(t, &Cursor{Offset: 4, ID: "abc"}, got)

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, empty)

	_, err = ParseCursor("not base64!")
	require.Error(t, err)
}

func TestWindowWalksAllPages(t *testing.T) {
	items := ids(5)

	first, err := Window(items, Params{Limit: 2}, identity)
	require.NoError(t, err)
	require.Equal(t, []string{"p0", "p1"}, first.Items)
	require.NotEmpty(t, first.NextCursor)

	second, err := Window(items, Params{Limit: 2, Cursor: first.NextCursor}, identity)
	require.NoError(t, err)
	require.Equal(t, []string{"p2", "p3"}, second.Items)

	last, err := Window(items, Params{Limit: 2, Cursor: second.NextCursor}, identity)
	require.NoError(t, err)
	require.Equal(t, []string{"p4"}, last.Items)
	require.Empty(t, last.NextCursor)
}

func TestWindowRestartsWhenListShifted(t *testing.T) {
	cursor := EncodeCursor(Cursor{Offset: 2, ID: "gone"})
	page, err := Window(ids(3), Params{Limit: 2, Cursor: cursor}, identity)
	require.NoError(t, err)
	require.Equal(t, []string{"p0", "p1"}, page.Items)
}
