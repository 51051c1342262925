package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Resolver looks up typed settings with static defaults.
//
// An override that is missing, empty or unparseable silently yields the
// default. Keeping the sandbox available is preferred over failing on a
// typo in the environment; each fallback is recorded so it can be logged
// once a logger exists.
type Resolver struct {
	v         *viper.Viper
	fallbacks []string
}

// NewResolver creates a Resolver reading overrides from v
func NewResolver(v *viper.Viper) *Resolver {
	return &Resolver{v: v}
}

// String resolves a string setting
func (r *Resolver) String(key, def string) string {
	return r.StringFunc(key, def, nil)
}

// StringFunc resolves a string setting, also falling back when valid rejects the override
func (r *Resolver) StringFunc(key, def string, valid func(string) bool) string {
	raw, ok := r.lookup(key)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(raw)
	s = strings.TrimSpace(s)
	if err != nil || s == "" || (valid != nil && !valid(s)) {
		r.fallback(key)
		return def
	}
	return s
}

// Uint resolves an unsigned integer setting
func (r *Resolver) Uint(key string, def uint64) uint64 {
	raw, ok := r.lookup(key)
	if !ok {
		return def
	}
	if s, isString := raw.(string); isString {
		raw = strings.TrimSpace(s)
	}
	n, err := cast.ToUint64E(raw)
	if err != nil {
		r.fallback(key)
		return def
	}
	return n
}

// PositiveUint resolves an unsigned integer setting where zero counts as unparseable
func (r *Resolver) PositiveUint(key string, def uint64) uint64 {
	n := r.Uint(key, def)
	if n == 0 {
		r.fallback(key)
		return def
	}
	return n
}

// IntE resolves an integer setting that must not fall back. A missing
// override yields def; an unparseable one is an error.
func (r *Resolver) IntE(key string, def int) (int, error) {
	raw, ok := r.lookup(key)
	if !ok {
		return def, nil
	}
	if s, isString := raw.(string); isString {
		raw = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, raw)
	}
	return n, nil
}

// Bool resolves a boolean setting
func (r *Resolver) Bool(key string, def bool) bool {
	raw, ok := r.lookup(key)
	if !ok {
		return def
	}
	if s, isString := raw.(string); isString {
		raw = strings.TrimSpace(s)
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		r.fallback(key)
		return def
	}
	return b
}

// Fallbacks returns the keys whose override was present but rejected
func (r *Resolver) Fallbacks() []string {
	return append([]string(nil), r.fallbacks...)
}

func (r *Resolver) lookup(key string) (any, bool) {
	if !r.v.IsSet(key) {
		return nil, false
	}
	raw := r.v.Get(key)
	if raw == nil {
		return nil, false
	}
	return raw, true
}

func (r *Resolver) fallback(key string) {
	for _, k := range r.fallbacks {
		if k == key {
			return
		}
	}
	r.fallbacks = append(r.fallbacks, key)
}
