// Package statblock defines the standardized inspectable data structure
// produced by system handlers, together with the element-key grammar used to
// address every toggleable unit of it.
package statblock

import (
	"strings"
	"unicode"
)

// Kind classifies an element key. Keys are typed in memory; the string
// encoding exists only at the persistence boundary.
type Kind int

const (
	// KindOpaque covers keys read back from storage that do not match any
	// known family. They are preserved verbatim so legacy flag data
	// survives round trips.
	KindOpaque Kind = iota
	KindSection
	KindHeader
	KindAbility
	KindDefCategory
	KindDefTag
	KindEffect
	KindFeature
	KindActiveFeature
)

// Key identifies one toggleable display unit. Category is set only for
// defense families; ID carries the section name, ability id, item or effect
// id, or the normalized tag value depending on Kind.
type Key struct {
	Kind     Kind
	Category string
	ID       string
}

const (
	prefixSection       = "section-"
	prefixHeader        = "header-"
	prefixAbility       = "ability-"
	prefixDefTag        = "def-tag-"
	prefixDef           = "def-"
	prefixEffect        = "effect-"
	prefixActiveFeature = "active-feature-"
	prefixFeature       = "feature-"
)

func SectionKey(name string) Key  { return Key{Kind: KindSection, ID: name} }
func HeaderKey(id string) Key     { return Key{Kind: KindHeader, ID: id} }
func AbilityKey(id string) Key    { return Key{Kind: KindAbility, ID: id} }
func EffectKey(id string) Key     { return Key{Kind: KindEffect, ID: id} }
func FeatureKey(id string) Key    { return Key{Kind: KindFeature, ID: id} }
func ActiveFeatureKey(id string) Key {
	return Key{Kind: KindActiveFeature, ID: id}
}

// DefCategoryKey addresses a defense-category header, e.g. resistances.
func DefCategoryKey(category string) Key {
	return Key{Kind: KindDefCategory, Category: category}
}

// DefTagKey addresses one defense trait instance. The value is normalized
// before it becomes part of the key.
func DefTagKey(category, value string) Key {
	return Key{Kind: KindDefTag, Category: category, ID: NormalizeTag(value)}
}

// String encodes the key for persistence.
func (k Key) String() string {
	switch k.Kind {
	case KindSection:
		return prefixSection + k.ID
	case KindHeader:
		return prefixHeader + k.ID
	case KindAbility:
		return prefixAbility + k.ID
	case KindDefCategory:
		return prefixDef + k.Category
	case KindDefTag:
		return prefixDefTag + k.Category + "-" + k.ID
	case KindEffect:
		return prefixEffect + k.ID
	case KindFeature:
		return prefixFeature + k.ID
	case KindActiveFeature:
		return prefixActiveFeature + k.ID
	}
	return k.ID
}

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool {
	return k.Kind == KindOpaque && k.Category == "" && k.ID == ""
}

// Group reports whether toggling this key fans out to children keys.
func (k Key) Group() bool {
	return k.Kind == KindSection || k.Kind == KindDefCategory
}

// ParseKey decodes a persisted key string. Strings outside the known
// families come back as KindOpaque with the raw string in ID; callers must
// carry them through untouched.
func ParseKey(s string) Key {
	switch {
	case strings.HasPrefix(s, prefixSection):
		return Key{Kind: KindSection, ID: s[len(prefixSection):]}
	case strings.HasPrefix(s, prefixHeader):
		return Key{Kind: KindHeader, ID: s[len(prefixHeader):]}
	case strings.HasPrefix(s, prefixAbility):
		return Key{Kind: KindAbility, ID: s[len(prefixAbility):]}
	case strings.HasPrefix(s, prefixDefTag):
		// The tag value is normalized to alphanumerics, so the category is
		// everything up to the final hyphen even when the category name
		// itself contains hyphens (condition-immunities).
		rest := s[len(prefixDefTag):]
		i := strings.LastIndex(rest, "-")
		if i <= 0 || i == len(rest)-1 {
			return Key{Kind: KindOpaque, ID: s}
		}
		return Key{Kind: KindDefTag, Category: rest[:i], ID: rest[i+1:]}
	case strings.HasPrefix(s, prefixDef):
		return Key{Kind: KindDefCategory, Category: s[len(prefixDef):]}
	case strings.HasPrefix(s, prefixEffect):
		return Key{Kind: KindEffect, ID: s[len(prefixEffect):]}
	case strings.HasPrefix(s, prefixActiveFeature):
		return Key{Kind: KindActiveFeature, ID: s[len(prefixActiveFeature):]}
	case strings.HasPrefix(s, prefixFeature):
		return Key{Kind: KindFeature, ID: s[len(prefixFeature):]}
	}
	return Key{Kind: KindOpaque, ID: s}
}

// NormalizeTag lowercases a trait label and strips everything that is not a
// letter or digit, so "Radiant Damage" and "radiant damage" address the same
// flag entry.
func NormalizeTag(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
