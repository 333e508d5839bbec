// Package filter narrows the catalog as a conversation collects answers.
package filter

import (
	"strings"

	"perfume-advisor-be/pkg/catalog"
	"perfume-advisor-be/pkg/textnorm"
)

type Key string

const (
	TimeOfUse      Key = "timeOfUse"
	TargetGender   Key = "targetGender"
	PrimaryScent   Key = "primaryScent"
	SecondaryScent Key = "secondaryScent"
	Intensity      Key = "intensity"
)

const unisex = "unisex"

// Criterion is one applied (key, value) pair.
type Criterion struct {
	Key   Key    `json:"key"`
	Value string `json:"value"`
}

// Set is the ordered list of criteria applied to a session. A key may appear more than once
// when an answer is revisited; every entry narrowed the candidates.
type Set []Criterion

// Get returns the most recent value for key.
func (s Set) Get(key Key) (string, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Key == key {
			return s[i].Value, true
		}
	}
	return "", false
}

// Map flattens the set to the latest value per key.
func (s Set) Map() map[Key]string {
	m := make(map[Key]string, len(s))
	for _, c := range s {
		m[c.Key] = c.Value
	}
	return m
}

// constraining reports whether value narrows anything at all.
func constraining(value string) bool {
	return strings.TrimSpace(value) != "" && !textnorm.IsDontKnow(value)
}

// Matches reports whether item passes the (key, value) filter.
// A secondaryScent value is compared with the item's primary scent column, not the secondary one.
func Matches(item catalog.Item, key Key, value string) bool {
	if !constraining(value) {
		return true
	}

	switch key {
	case TimeOfUse:
		return textnorm.ContainsFold(item.TimeOfUse, value)
	case TargetGender:
		if strings.EqualFold(strings.TrimSpace(item.TargetGender), unisex) {
			return true
		}
		return textnorm.ContainsFold(item.TargetGender, value)
	case PrimaryScent, SecondaryScent:
		return textnorm.ContainsFold(item.PrimaryScent, value)
	case Intensity:
		return textnorm.ContainsFold(item.Intensity, value)
	default:
		return true
	}
}

// Select filters items by every criterion in one pass.
func Select(items []catalog.Item, filters Set) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if matchesAll(item, filters) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll(item catalog.Item, filters Set) bool {
	for _, c := range filters {
		if !Matches(item, c.Key, c.Value) {
			return false
		}
	}
	return true
}
