package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestResolver(t *testing.T) {
	newResolver := func(values map[string]any) *Resolver {
		v := viper.New()
		for k, val := range values {
			v.Set(k, val)
		}
		return NewResolver(v)
	}

	t.Run("MissingUsesDefault", func(t *testing.T) {
		r := newResolver(nil)
		assert.Equal(t, "def", r.String("a", "def"))
		assert.Equal(t, uint64(7), r.Uint("b", 7))
		assert.True(t, r.Bool("c", true))
		assert.Empty(t, r.Fallbacks())
	})

	t.Run("ParseableOverride", func(t *testing.T) {
		r := newResolver(map[string]any{"a": "value", "b": "42", "c": "false", "d": 9})
		assert.Equal(t, "value", r.String("a", "def"))
		assert.Equal(t, uint64(42), r.Uint("b", 7))
		assert.False(t, r.Bool("c", true))
		assert.Equal(t, uint64(9), r.Uint("d", 7))
		assert.Empty(t, r.Fallbacks())
	})

	t.Run("UnparseableOverride", func(t *testing.T) {
		r := newResolver(map[string]any{"a": "  ", "b": "forty-two", "c": "yes please", "d": "-3"})
		assert.Equal(t, "def", r.String("a", "def"))
		assert.Equal(t, uint64(7), r.Uint("b", 7))
		assert.True(t, r.Bool("c", true))
		assert.Equal(t, uint64(7), r.Uint("d", 7))
		assert.Equal(t, []string{"a", "b", "c", "d"}, r.Fallbacks())
	})

	t.Run("RejectedByValidator", func(t *testing.T) {
		r := newResolver(map[string]any{"a": "bad value"})
		assert.Equal(t, "def", r.StringFunc("a", "def", func(s string) bool { return s == "good" }))
		assert.Equal(t, []string{"a"}, r.Fallbacks())
	})

	t.Run("PositiveUint", func(t *testing.T) {
		r := newResolver(map[string]any{"zero": "0", "one": "1"})
		assert.Equal(t, uint64(5), r.PositiveUint("zero", 5))
		assert.Equal(t, uint64(1), r.PositiveUint("one", 5))
		assert.Equal(t, []string{"zero"}, r.Fallbacks())
	})

	t.Run("IntE", func(t *testing.T) {
		r := newResolver(map[string]any{"port": " 9090 ", "bad": "abc"})

		n, err := r.IntE("port", 8080)
		assert.NoError(t, err)
		assert.Equal(t, 9090, n)

		n, err = r.IntE("missing", 8080)
		assert.NoError(t, err)
		assert.Equal(t, 8080, n)

		_, err = r.IntE("bad", 8080)
		assert.ErrorContains(t, err, "invalid bad")
		assert.Empty(t, r.Fallbacks())
	})

	t.Run("FallbackRecordedOnce", func(t *testing.T) {
		r := newResolver(map[string]any{"b": "x"})
		r.Uint("b", 1)
		r.PositiveUint("b", 1)
		assert.Equal(t, []string{"b"}, r.Fallbacks())
	})
}
