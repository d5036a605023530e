// Package directive parses inline [img_assist|...] tags out of document bodies.
//
// A body is split into an ordered sequence of chunks: literal text spans that
// pass through untouched, and image directives whose key=value fields carry a
// source path plus optional sizing, alignment, title, and link metadata.
package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/euforicio/sitemd/internal/scale"
)

// Delimiter opens an image directive inside a document body.
const Delimiter = "[img_assist|"

// Alignment places an image relative to the surrounding text.
type Alignment int

// Supported alignment values. Inline is the default.
const (
	AlignInline Alignment = iota
	AlignLeft
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "inline"
	}
}

// Chunk is one span of a parsed document body, either a Text or an Image.
type Chunk interface {
	chunk()
}

// Text is a literal span emitted verbatim.
type Text struct {
	Content string
}

func (Text) chunk() {}

// Image is a parsed image directive. Source and Rendered start nil and are
// populated by the resolution pipeline; Rendered is set if and only if
// Source is. Thumb is the derived thumbnail path, empty when the original
// file is referenced directly.
type Image struct {
	URL       string
	Title     string
	Align     Alignment
	IsLink    bool
	Requested scale.Request
	Source    *scale.Size
	Rendered  *scale.Size
	Thumb     string
}

func (Image) chunk() {}

// Parse splits a document body into ordered chunks. The first chunk is
// always a Text (possibly empty); each directive is followed by the text up
// to the next delimiter or end of input. Parsing is pure and all-or-nothing:
// any malformed directive fails the whole body.
func Parse(body string) ([]Chunk, error) {
	segments := strings.Split(body, Delimiter)
	chunks := make([]Chunk, 0, 2*len(segments)-1)
	chunks = append(chunks, Text{Content: segments[0]})

	for _, segment := range segments[1:] {
		dir, rest, ok := strings.Cut(segment, "]")
		if !ok {
			return nil, fmt.Errorf("unterminated image directive %q", Delimiter+segment)
		}
		img, err := parseDirective(dir)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, img, Text{Content: rest})
	}

	return chunks, nil
}

func parseDirective(body string) (Image, error) {
	fields := make(map[string]string)
	for _, field := range strings.Split(body, "|") {
		key, value, _ := strings.Cut(field, "=")
		fields[key] = value
	}

	img := Image{Requested: scale.Unknown()}

	url, ok := fields["url"]
	if !ok || url == "" {
		return Image{}, fmt.Errorf("image directive %q is missing the url field", body)
	}
	img.URL = url
	img.Title = fields["title"]
	_, img.IsLink = fields["link"]

	switch align := fields["align"]; align {
	case "", "inline":
		img.Align = AlignInline
	case "left":
		img.Align = AlignLeft
	case "right":
		img.Align = AlignRight
	default:
		return Image{}, fmt.Errorf("image directive %q has unknown align value %q", body, align)
	}

	width, haveWidth, err := parseDimension(body, fields, "width")
	if err != nil {
		return Image{}, err
	}
	height, haveHeight, err := parseDimension(body, fields, "height")
	if err != nil {
		return Image{}, err
	}

	switch {
	case haveWidth && haveHeight:
		img.Requested = scale.Both(width, height)
	case haveWidth:
		img.Requested = scale.WidthOnly(width)
	case haveHeight:
		img.Requested = scale.HeightOnly(height)
	}

	return img, nil
}

func parseDimension(body string, fields map[string]string, key string) (int, bool, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("image directive %q: parse %s: %w", body, key, err)
	}
	if value <= 0 {
		return 0, false, fmt.Errorf("image directive %q: %s %d is not positive", body, key, value)
	}
	return value, true, nil
}
