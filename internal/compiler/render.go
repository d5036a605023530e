package compiler

import (
	"fmt"
	"html"
	"strings"

	"github.com/euforicio/sitemd/internal/directive"
)

func renderChunk(chunk directive.Chunk) (string, error) {
	switch c := chunk.(type) {
	case directive.Text:
		return c.Content, nil
	case directive.Image:
		return renderImage(c)
	default:
		return "", fmt.Errorf("%w: unhandled chunk type %T", ErrInternal, chunk)
	}
}

// renderImage turns a fully resolved image chunk into an HTML fragment.
// A linked image references its thumbnail and wraps it in an anchor to the
// original; an unlinked one references the original directly, scaled by the
// computed width/height attributes. The title doubles as alt text and, when
// present, a trailing caption.
func renderImage(img directive.Image) (string, error) {
	if img.Rendered == nil {
		return "", fmt.Errorf("%w: image %s reached rendering without computed dimensions", ErrInternal, img.URL)
	}

	src := img.URL
	if img.IsLink && img.Thumb != "" {
		src = img.Thumb
	}
	title := html.EscapeString(img.Title)

	var sb strings.Builder
	if img.IsLink {
		fmt.Fprintf(&sb, `<a href="%s">`, html.EscapeString(img.URL))
	}
	fmt.Fprintf(&sb, `<img src="%s" alt="%s" title="%s" width="%d" height="%d" class="image-%s" />`,
		html.EscapeString(src), title, title,
		img.Rendered.Width, img.Rendered.Height, img.Align)
	if img.IsLink {
		sb.WriteString(`</a>`)
	}
	if img.Title != "" {
		fmt.Fprintf(&sb, `<span class="caption">%s</span>`, title)
	}
	return sb.String(), nil
}
