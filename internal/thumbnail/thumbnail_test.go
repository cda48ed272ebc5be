package thumbnail

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestRenderScalesToWidth(t *testing.T) {
	src := encodePNG(t, testImage(1000, 600))

	tests := []struct {
		width      int
		wantHeight int
	}{
		{500, 300},
		{250, 150},
		{100, 60},
	}

	for _, tt := range tests {
		out, err := Render(bytes.NewReader(src), tt.width)
		if err != nil {
			t.Fatalf("Render(%d) failed: %v", tt.width, err)
		}
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("output for width %d is not an image: %v", tt.width, err)
		}
		if format != "png" {
			t.Errorf("expected png output, got %s", format)
		}
		if cfg.Width != tt.width || cfg.Height != tt.wantHeight {
			t.Errorf("width %d: expected %dx%d, got %dx%d", tt.width, tt.width, tt.wantHeight, cfg.Width, cfg.Height)
		}
	}
}

func TestRenderKeepsSmallImages(t *testing.T) {
	src := encodePNG(t, testImage(80, 40))

	out, err := Render(bytes.NewReader(src), 500)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not an image: %v", err)
	}
	if cfg.Width != 80 || cfg.Height != 40 {
		t.Errorf("expected 80x40, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderKeepsJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(600, 400), nil); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}

	out, err := Render(bytes.NewReader(buf.Bytes()), 250)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not an image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	src := encodePNG(t, testImage(640, 480))

	first, err := Render(bytes.NewReader(src), 100)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	second, err := Render(bytes.NewReader(src), 100)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected identical output for identical input")
	}
}

func TestRenderRejectsNonImages(t *testing.T) {
	_, err := Render(strings.NewReader("just some text"), 100)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}

	if _, err := Render(bytes.NewReader(encodePNG(t, testImage(10, 10))), 0); err == nil {
		t.Error("expected error for zero width")
	}
}
