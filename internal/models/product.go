package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	OverviewKey  = "Overview"
	bulletPrefix = "Bullet "
)

// PriorityColumns is the per-record column order for known attributes.
var PriorityColumns = []string{
	"Part Number",
	"Overview",
	"Wheel Diameter (in)",
	"Wheel Width (in)",
	"Bolt Pattern",
	"Offset (mm)",
	"Hub Bore (mm)",
	"Back Spacing (in)",
	"Wheel Weight (lbs)",
	"Max Load (lbs)",
}

// FieldMap is an insertion-ordered string mapping holding one product.
type FieldMap struct {
	keys   []string
	values map[string]string
}

func NewFieldMap() *FieldMap {
	return &FieldMap{values: make(map[string]string)}
}

// FieldMapOf builds a map from alternating key, value arguments.
func FieldMapOf(pairs ...string) *FieldMap {
	if len(pairs)%2 != 0 {
		panic("models: FieldMapOf needs key/value pairs")
	}
	m := NewFieldMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set stores value under key, keeping the original position of existing keys.
func (m *FieldMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetIfAbsent stores value only when key is new and reports whether it did.
func (m *FieldMap) SetIfAbsent(key, value string) bool {
	if _, ok := m.values[key]; ok {
		return false
	}
	m.Set(key, value)
	return true
}

func (m *FieldMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	value, ok := m.values[key]
	return value, ok
}

func (m *FieldMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Ordered returns a copy with priority columns first, bullets by index and
// everything else in encounter order.
func (m *FieldMap) Ordered() *FieldMap {
	out := NewFieldMap()
	if m == nil {
		return out
	}

	for _, key := range PriorityColumns {
		if value, ok := m.values[key]; ok {
			out.Set(key, value)
		}
	}

	for _, key := range SortBulletKeys(m.keys) {
		out.SetIfAbsent(key, m.values[key])
	}

	for _, key := range m.keys {
		out.SetIfAbsent(key, m.values[key])
	}

	return out
}

func (m *FieldMap) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, key := range m.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%q: %q", key, m.values[key])
	}
	b.WriteString("}")
	return b.String()
}

// BulletKey names the n-th accepted bullet, counting from 1.
func BulletKey(n int) string {
	return bulletPrefix + strconv.Itoa(n)
}

// BulletIndex parses a bullet key. Keys that merely start with "Bullet " are
// not bullets unless the remainder is a positive integer.
func BulletIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, bulletPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func IsBulletKey(key string) bool {
	_, ok := BulletIndex(key)
	return ok
}

// SortBulletKeys returns the bullet keys in keys ordered by index.
func SortBulletKeys(keys []string) []string {
	var bullets []string
	for _, key := range keys {
		if IsBulletKey(key) {
			bullets = append(bullets, key)
		}
	}
	sort.SliceStable(bullets, func(i, j int) bool {
		a, _ := BulletIndex(bullets[i])
		b, _ := BulletIndex(bullets[j])
		return a < b
	})
	return bullets
}
