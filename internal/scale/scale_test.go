package scale_test

import (
	"errors"
	"testing"

	"github.com/euforicio/sitemd/internal/scale"
)

func TestComputeMatchingRatio(t *testing.T) {
	t.Parallel()
	got, err := scale.Compute(scale.Both(50, 20), scale.Size{Width: 100, Height: 40})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got != (scale.Size{Width: 50, Height: 20}) {
		t.Fatalf("expected 50x20, got %s", got)
	}
}

func TestComputeBothCapsEachAxis(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		req  scale.Request
		src  scale.Size
		want scale.Size
	}{
		{
			// Requested square against a wide source: height wins, width follows.
			name: "wide source square request",
			req:  scale.Both(50, 50),
			src:  scale.Size{Width: 100, Height: 40},
			want: scale.Size{Width: 50, Height: 20},
		},
		{
			name: "tall source square request",
			req:  scale.Both(50, 50),
			src:  scale.Size{Width: 40, Height: 100},
			want: scale.Size{Width: 20, Height: 50},
		},
		{
			name: "native size request",
			req:  scale.Both(100, 40),
			src:  scale.Size{Width: 100, Height: 40},
			want: scale.Size{Width: 100, Height: 40},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := scale.Compute(tc.req, tc.src)
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestComputeWidthOnlyRoundsHalfUp(t *testing.T) {
	t.Parallel()
	// 33 * 50 / 100 = 16.5, which must round up to 17, not to even.
	got, err := scale.Compute(scale.WidthOnly(50), scale.Size{Width: 100, Height: 33})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got != (scale.Size{Width: 50, Height: 17}) {
		t.Fatalf("expected 50x17, got %s", got)
	}
}

func TestComputeHeightOnly(t *testing.T) {
	t.Parallel()
	got, err := scale.Compute(scale.HeightOnly(20), scale.Size{Width: 100, Height: 40})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got != (scale.Size{Width: 50, Height: 20}) {
		t.Fatalf("expected 50x20, got %s", got)
	}
}

func TestComputeRejectsZeroSource(t *testing.T) {
	t.Parallel()
	if _, err := scale.Compute(scale.WidthOnly(50), scale.Size{Width: 0, Height: 40}); err == nil {
		t.Fatalf("expected error for zero source width")
	}
	if _, err := scale.Compute(scale.WidthOnly(50), scale.Size{Width: 100, Height: 0}); err == nil {
		t.Fatalf("expected error for zero source height")
	}
}

func TestComputeRejectsUnknownRequest(t *testing.T) {
	t.Parallel()
	_, err := scale.Compute(scale.Unknown(), scale.Size{Width: 100, Height: 40})
	if !errors.Is(err, scale.ErrUnknownRequest) {
		t.Fatalf("expected ErrUnknownRequest, got %v", err)
	}
}

func TestRequestTag(t *testing.T) {
	t.Parallel()
	cases := []struct {
		req  scale.Request
		want string
	}{
		{scale.Both(50, 20), "50_20"},
		{scale.WidthOnly(50), "w50"},
		{scale.HeightOnly(20), "h20"},
	}
	for _, tc := range cases {
		tag, err := tc.req.Tag()
		if err != nil {
			t.Fatalf("Tag(%+v) returned error: %v", tc.req, err)
		}
		if tag != tc.want {
			t.Fatalf("Tag(%+v) = %q, want %q", tc.req, tag, tc.want)
		}
	}

	if _, err := scale.Unknown().Tag(); !errors.Is(err, scale.ErrUnknownRequest) {
		t.Fatalf("expected ErrUnknownRequest for unknown tag")
	}
}

func TestRequestGeometry(t *testing.T) {
	t.Parallel()
	cases := []struct {
		req  scale.Request
		want string
	}{
		{scale.Both(50, 20), "50x20"},
		{scale.WidthOnly(50), "50"},
		{scale.HeightOnly(20), "x20"},
	}
	for _, tc := range cases {
		geom, err := tc.req.Geometry()
		if err != nil {
			t.Fatalf("Geometry(%+v) returned error: %v", tc.req, err)
		}
		if geom != tc.want {
			t.Fatalf("Geometry(%+v) = %q, want %q", tc.req, geom, tc.want)
		}
	}

	if _, err := scale.Unknown().Geometry(); !errors.Is(err, scale.ErrUnknownRequest) {
		t.Fatalf("expected ErrUnknownRequest for unknown geometry")
	}
}
