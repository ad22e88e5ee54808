package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnyInt(t *testing.T) {
	t.Run("Should parse native and string forms", func(t *testing.T) {
		v, ok := ParseAnyInt(42)
		require.True(t, ok)
		assert.Equal(t, 42, v)

		v, ok = ParseAnyInt(int64(7))
		require.True(t, ok)
		assert.Equal(t, 7, v)

		v, ok = ParseAnyInt(" 13 ")
		require.True(t, ok)
		assert.Equal(t, 13, v)
	})

	t.Run("Should reject lossy floats and garbage", func(t *testing.T) {
		_, ok := ParseAnyInt(1.5)
		assert.False(t, ok)

		v, ok := ParseAnyInt(3.0)
		require.True(t, ok)
		assert.Equal(t, 3, v)

		_, ok = ParseAnyInt("abc")
		assert.False(t, ok)

		_, ok = ParseAnyInt("")
		assert.False(t, ok)
	})
}

func TestParseAnyFloat(t *testing.T) {
	t.Run("Should parse numeric and string forms", func(t *testing.T) {
		v, ok := ParseAnyFloat("3.25")
		require.True(t, ok)
		assert.InDelta(t, 3.25, v, 1e-9)

		v, ok = ParseAnyFloat(2)
		require.True(t, ok)
		assert.InDelta(t, 2.0, v, 1e-9)
	})

	t.Run("Should reject non-numeric input", func(t *testing.T) {
		_, ok := ParseAnyFloat("three")
		assert.False(t, ok)
		_, ok = ParseAnyFloat(nil)
		assert.False(t, ok)
	})
}

func TestParseAnyBool(t *testing.T) {
	t.Run("Should parse booleans, strings and ints", func(t *testing.T) {
		v, ok := ParseAnyBool("true")
		require.True(t, ok)
		assert.True(t, v)

		v, ok = ParseAnyBool(0)
		require.True(t, ok)
		assert.False(t, v)
	})

	t.Run("Should reject unknown forms", func(t *testing.T) {
		_, ok := ParseAnyBool("maybe")
		assert.False(t, ok)
	})
}

func TestParseAnyDuration(t *testing.T) {
	t.Run("Should parse Go and human forms", func(t *testing.T) {
		v, ok := ParseAnyDuration("90s")
		require.True(t, ok)
		assert.Equal(t, 90*time.Second, v)

		v, ok = ParseAnyDuration("1d")
		require.True(t, ok)
		assert.Equal(t, 24*time.Hour, v)

		v, ok = ParseAnyDuration(5 * time.Minute)
		require.True(t, ok)
		assert.Equal(t, 5*time.Minute, v)
	})

	t.Run("Should truncate fractional float input", func(t *testing.T) {
		v, ok := ParseAnyDuration(1.9)
		require.True(t, ok)
		assert.Equal(t, time.Duration(1), v)
	})

	t.Run("Should reject blank strings", func(t *testing.T) {
		_, ok := ParseAnyDuration("   ")
		assert.False(t, ok)
	})
}

func TestToStringMap(t *testing.T) {
	t.Run("Should copy string maps to avoid aliasing", func(t *testing.T) {
		src := map[string]string{"a": "1"}
		out := ToStringMap(src)
		out["a"] = "2"
		assert.Equal(t, "1", src["a"])
	})

	t.Run("Should keep only string values from any maps", func(t *testing.T) {
		out := ToStringMap(map[string]any{"a": "1", "b": 2})
		assert.Equal(t, map[string]string{"a": "1"}, out)
	})

	t.Run("Should return nil for unsupported input", func(t *testing.T) {
		assert.Nil(t, ToStringMap(42))
		assert.Nil(t, ToStringMap(nil))
	})
}
