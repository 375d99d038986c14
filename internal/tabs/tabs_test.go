package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeDefaultsTitle(t *testing.T) {
	d := Describe(Tab{ID: 4, Title: "  ", Address: "https://example.com"}, nil)
	assert.Equal(t, "Untitled", d.Title)
	assert.Nil(t, d.Preview)
}

func TestDescriptorInitial(t *testing.T) {
	cases := map[string]string{
		"github":  "G",
		"élan":    "É",
		"":        "?",
		"  docs ": "D",
	}
	for title, want := range cases {
		assert.Equal(t, want, (Descriptor{Title: title}).Initial(), "Initial(%q)", title)
	}
}

func TestDescriptorHost(t *testing.T) {
	cases := []struct {
		address string
		want    string
	}{
		{"https://www.example.com/path", "example.com"},
		{"https://go.dev", "go.dev"},
		{"chrome://extensions", "extensions"},
		{"", ""},
		{"::not a url", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, (Descriptor{Address: tc.address}).Host(), "Host(%q)", tc.address)
	}
}
