package model

import (
	"encoding/json"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func TestWei_AddSub(t *testing.T) {
	sum, ok := Wei(2).Add(3)
	require.True(t, ok)
	require.Equal(t, Wei(5), sum)

	_, ok = Wei(math.MaxUint64).Add(1)
	require.False(t, ok)

	diff, ok := Wei(5).Sub(5)
	require.True(t, ok)
	require.Equal(t, Wei(0), diff)

	_, ok = Wei(1).Sub(2)
	require.False(t, ok)
}

func TestWei_JSON(t *testing.T) {
	raw, err := json.Marshal(Wei(math.MaxUint64))
	require.NoError(t, err)
	require.Equal(t, `"18446744073709551615"`, string(raw))

	var w Wei
	require.NoError(t, json.Unmarshal([]byte(`"1000000000000000"`), &w))
	require.Equal(t, Wei(1_000_000_000_000_000), w)
	require.NoError(t, json.Unmarshal([]byte(`42`), &w))
	require.Equal(t, Wei(42), w)
	require.Error(t, json.Unmarshal([]byte(`"-1"`), &w))
}

func TestWei_Scan(t *testing.T) {
	var w Wei
	require.NoError(t, w.Scan("18446744073709551615"))
	require.Equal(t, Wei(math.MaxUint64), w)
	require.NoError(t, w.Scan([]byte("7")))
	require.Equal(t, Wei(7), w)
	require.NoError(t, w.Scan(int64(9)))
	require.Equal(t, Wei(9), w)
	require.NoError(t, w.Scan(nil))
	require.Equal(t, Wei(0), w)
	require.Error(t, w.Scan(int64(-1)))
	require.Error(t, w.Scan(1.5))

	value, err := Wei(11).Value()
	require.NoError(t, err)
	require.Equal(t, "11", value)
}
