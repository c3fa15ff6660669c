package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReference(t *testing.T) {
	reference := GenerateReference("ERUDIO", 7, 3)
	assert.Regexp(t, regexp.MustCompile(`^ERUDIO-7-3-[0-9A-F]{10}$`), reference)

	assert.NotEqual(t, reference, GenerateReference("ERUDIO", 7, 3))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Go Basics":               "go-basics",
		"  Advanced   Topics!  ":  "advanced-topics",
		"C++ & Rust: A Deep-Dive": "c-rust-a-deep-dive",
		"éclair":                  "clair",
		"":                        "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
