package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"ab":              "***",
		"12345":           "1…5",
		"John@Acme.com":   "j…@a….com",
		"x@example.com":   "x@e….com",
		"12345@pml.com":   "1…@p….com",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "https://app.example.com/cb", MaskURL("https://app.example.com/cb?code=abc&state=x"))
	assert.Equal(t, "https://app.example.com/cb", MaskURL("https://app.example.com/cb#frag"))
	assert.Equal(t, "https://app.example.com/cb", MaskURL("https://app.example.com/cb"))
}
