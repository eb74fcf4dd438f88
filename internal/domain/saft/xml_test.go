package saft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"A & B", "A &amp; B"},
		{"<tag>", "&lt;tag&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"O'Neil", "O&apos;Neil"},
		{"&amp;", "&amp;amp;"},
		{"Rua São João, 1.º", "Rua São João, 1.º"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeXML(tt.in))
		})
	}
}

func TestRender(t *testing.T) {
	doc := El("Root",
		Leaf("Name", "Tom & Jerry"),
		El("Empty"),
	).WithAttr("note", `a"b`)

	out := Render(doc)

	assert.True(t, strings.HasPrefix(out, XMLDeclaration+"\n"))
	assert.Contains(t, out, `<Root note="a&quot;b">`)
	assert.Contains(t, out, "  <Name>Tom &amp; Jerry</Name>\n")
	assert.Contains(t, out, "  <Empty></Empty>\n")
	assert.True(t, strings.HasSuffix(out, "</Root>\n"))
}

func TestNode_Find(t *testing.T) {
	doc := El("A", Leaf("B", "1"), Leaf("C", "2"))
	assert.Equal(t, "2", doc.Find("C").Text)
	assert.Nil(t, doc.Find("D"))
}
