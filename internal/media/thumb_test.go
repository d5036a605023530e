package media_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/euforicio/sitemd/internal/media"
	"github.com/euforicio/sitemd/internal/scale"
)

type countingResizer struct {
	calls      int
	lastGeom   string
	failResize bool
}

func (r *countingResizer) Resize(_ context.Context, _, geometry, dest string) error {
	r.calls++
	r.lastGeom = geometry
	if r.failResize {
		return errors.New("resize tool exploded")
	}
	return os.WriteFile(dest, []byte("thumb"), 0o644)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestThumbPathScheme(t *testing.T) {
	t.Parallel()
	cases := []struct {
		src  string
		req  scale.Request
		want string
	}{
		{"pic.jpg", scale.WidthOnly(50), "pichakyllthumb_w50.jpg"},
		{"pic.jpg", scale.HeightOnly(20), "pichakyllthumb_h20.jpg"},
		{"pic.jpg", scale.Both(50, 20), "pichakyllthumb_50_20.jpg"},
		{"images/photo.png", scale.WidthOnly(120), filepath.Join("images", "photohakyllthumb_w120.png")},
	}
	for _, tc := range cases {
		got, err := media.ThumbPath(tc.src, tc.req)
		if err != nil {
			t.Fatalf("ThumbPath(%q, %+v) returned error: %v", tc.src, tc.req, err)
		}
		if got != tc.want {
			t.Fatalf("ThumbPath(%q, %+v) = %q, want %q", tc.src, tc.req, got, tc.want)
		}
	}
}

func TestThumbPathRejectsUnknownRequest(t *testing.T) {
	t.Parallel()
	if _, err := media.ThumbPath("pic.jpg", scale.Unknown()); !errors.Is(err, scale.ErrUnknownRequest) {
		t.Fatalf("expected ErrUnknownRequest, got %v", err)
	}
}

func TestMaterializeCachesByFilename(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.jpg")
	if err := os.WriteFile(src, []byte("source"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	resizer := &countingResizer{}
	thumbs := media.NewThumbnailer(resizer, quietLogger())
	ctx := context.Background()
	req := scale.WidthOnly(50)

	first, err := thumbs.Materialize(ctx, src, req)
	if err != nil {
		t.Fatalf("first Materialize: %v", err)
	}
	if resizer.calls != 1 {
		t.Fatalf("expected one resize invocation, got %d", resizer.calls)
	}
	if resizer.lastGeom != "50" {
		t.Fatalf("unexpected geometry: %q", resizer.lastGeom)
	}
	if filepath.Base(first) != "pichakyllthumb_w50.jpg" {
		t.Fatalf("unexpected thumbnail name: %q", first)
	}

	second, err := thumbs.Materialize(ctx, src, req)
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	if second != first {
		t.Fatalf("expected identical derived path, got %q then %q", first, second)
	}
	if resizer.calls != 1 {
		t.Fatalf("expected cache hit to skip the resizer, got %d calls", resizer.calls)
	}
}

func TestMaterializePropagatesResizeFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "pic.jpg")
	if err := os.WriteFile(src, []byte("source"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	thumbs := media.NewThumbnailer(&countingResizer{failResize: true}, quietLogger())
	if _, err := thumbs.Materialize(context.Background(), src, scale.HeightOnly(20)); err == nil {
		t.Fatalf("expected resize failure to propagate")
	}
}
