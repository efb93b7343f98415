package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	cases := map[string]string{
		"plain   text\n here":                           "plain text here",
		`<p>First</p><p>Second</p>`:                     "First Second",
		`<a href="x">Link</a>&nbsp;<font>Source</font>`: "Link Source",
		"": "",
	}
	for in, want := range cases {
		assert.Equal(t, want, HTMLToText(in), "input %q", in)
	}
}
