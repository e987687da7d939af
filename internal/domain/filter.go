package domain

import (
	"regexp"
	"strings"
)

// FilterConfig holds the visibility criteria. The zero value has an unknown
// minimum level and therefore shows every record.
type FilterConfig struct {
	MinLevel Level

	patternText string
	pattern     *regexp.Regexp

	searchText  string
	searchLower string
}

// NewFilterConfig returns a config with the given minimum level and no
// pattern or search text.
func NewFilterConfig(min Level) FilterConfig {
	return FilterConfig{MinLevel: min}
}

// SetPattern updates the tag/task pattern. The pattern is only recompiled when
// the text changes. Empty or invalid text leaves the pattern filter inactive.
func (c *FilterConfig) SetPattern(text string) {
	if text == c.patternText {
		return
	}
	c.patternText = text
	c.pattern = nil
	if text == "" {
		return
	}
	if re, err := regexp.Compile(text); err == nil {
		c.pattern = re
	}
}

// SetSearch updates the case-insensitive substring matched against Raw.
func (c *FilterConfig) SetSearch(text string) {
	c.searchText = text
	c.searchLower = strings.ToLower(text)
}

func (c FilterConfig) PatternText() string { return c.patternText }

func (c FilterConfig) SearchText() string { return c.searchText }

// PatternActive reports whether a compiled tag/task pattern is in effect.
func (c FilterConfig) PatternActive() bool { return c.pattern != nil }

// Matches applies the level, pattern and search predicates together.
func (c FilterConfig) Matches(r Record) bool {
	if !r.Level.AtLeast(c.MinLevel) {
		return false
	}
	if c.pattern != nil && !c.pattern.MatchString(r.Tag) && !c.pattern.MatchString(r.Task) {
		return false
	}
	if c.searchLower != "" && !strings.Contains(strings.ToLower(r.Raw), c.searchLower) {
		return false
	}
	return true
}
