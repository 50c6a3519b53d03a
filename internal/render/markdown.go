package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Assistant answers arrive as markdown; user questions never pass through
// here and stay literal. Raw HTML inside the markdown is escaped by
// goldmark's default renderer.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func Markdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown failed: %w", err)
	}
	return buf.String(), nil
}
