package colorutil

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want RGBA
	}{
		{"#ffffff", White},
		{"000000", Black},
		{"#ff0000", RGBA{R: 1, A: 1}},
		{" #00ff00 ", RGBA{G: 1, A: 1}},
	}
	for _, tc := range cases {
		got, err := ParseHex(tc.in)
		if err != nil {
			t.Errorf("ParseHex(%q): %v", tc.in, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("ParseHex(%q) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
	if _, err := ParseHex("#zzzzzz"); err == nil {
		t.Error("ParseHex accepted garbage")
	}
}

func TestParseHexList(t *testing.T) {
	got, err := ParseHexList("#ffffff, #ff0000,,")
	if err != nil {
		t.Fatal(err)
	}
	want := []RGBA{White, {R: 1, A: 1}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := FromBytes(0x12, 0xab, 0x7f, 255)
	if got := c.Hex(); got != "#12ab7f" {
		t.Errorf("Hex() = %q, want #12ab7f", got)
	}
}

func TestFromColorUnpremultiplies(t *testing.T) {
	// 50% red, premultiplied.
	c := FromColor(color.RGBA{R: 128, A: 128})
	if c.R < 0.99 || c.A < 0.49 || c.A > 0.51 {
		t.Errorf("FromColor = %+v, want full red at half alpha", c)
	}
	if c.Transparent() != (c.A < 0.5) {
		t.Errorf("Transparent() inconsistent with alpha %v", c.A)
	}
}

func TestNRGBARounds(t *testing.T) {
	got := RGBA{R: 0.5, G: 1.2, B: -1, A: 1}.NRGBA()
	want := color.NRGBA{R: 128, G: 255, B: 0, A: 255}
	if got != want {
		t.Errorf("NRGBA() = %v, want %v", got, want)
	}
}

func TestContrastingBW(t *testing.T) {
	cases := []struct {
		name string
		in   RGBA
		want RGBA
	}{
		{"white", White, Black},
		{"black", Black, White},
		{"yellow", RGBA{R: 1, G: 1, A: 1}, Black},
		{"navy", RGBA{B: 0.5, A: 1}, White},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ContrastingBW(tc.in); got != tc.want {
				t.Errorf("ContrastingBW(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseHexMatchesBytes(t *testing.T) {
	got, err := ParseHex("#12ab7f")
	if err != nil {
		t.Fatal(err)
	}
	if want := FromBytes(0x12, 0xab, 0x7f, 255); got != want {
		t.Errorf("ParseHex = %+v, want exactly %+v", got, want)
	}
	if short, _ := ParseHex("#fff"); short != White {
		t.Errorf("#fff = %+v, want White", short)
	}
}
