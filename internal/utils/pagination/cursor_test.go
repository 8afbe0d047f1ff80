package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EmptyIsFirstPage(t *testing.T) {
	c, err := Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode("%%%not-base64")
	assert.Error(t, err)

	_, err = Decode("bm90IGpzb24=") // "not json"
	assert.Error(t, err)
}

func TestAfterKeepsFullPrecision(t *testing.T) {
	ts := time.Date(2024, 5, 1, 20, 30, 0, 123_456_789, time.UTC)
	token, err := Encode(After("m-1", ts))
	require.NoError(t, err)

	c, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "m-1", c.ID)
	assert.True(t, ts.Equal(c.Time()))
}
