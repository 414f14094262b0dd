package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/apperr"
	"birdfinder-server-go/src/core/utils"

	"golang.org/x/image/bmp"
)

func sample(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	return img
}

func encode(t *testing.T, enc func(io.Writer, image.Image) error, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := enc(&buf, sample(w, h)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newInspector(mutate func(*configs.UploadConfig)) *ImageInspector {
	config := configs.Default().Upload
	if mutate != nil {
		mutate(&config)
	}
	return NewImageInspector(&config, utils.NewConsoleLogger(utils.InfoLevel, io.Discard))
}

func TestInspect(t *testing.T) {
	jpegEnc := func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, nil) }
	gifEnc := func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }

	tests := []struct {
		name        string
		contentType string
		data        []byte
		mutate      func(*configs.UploadConfig)
		wantValid   bool
		wantFormat  string
		wantCode    string
	}{
		{
			name:        "png",
			contentType: "image/png",
			data:        encode(t, png.Encode, 4, 3),
			wantValid:   true,
			wantFormat:  "png",
		},
		{
			name:        "jpeg declared as image/jpg",
			contentType: "image/jpg",
			data:        encode(t, jpegEnc, 4, 3),
			wantValid:   true,
			wantFormat:  "jpeg",
		},
		{
			name:        "jpeg declared as png is still an allowed format",
			contentType: "image/png",
			data:        encode(t, jpegEnc, 4, 3),
			wantValid:   true,
			wantFormat:  "jpeg",
		},
		{
			name:        "random bytes",
			contentType: "image/png",
			data:        []byte("0123456789"),
			wantCode:    apperr.CodeInvalidImage,
		},
		{
			name:        "gif disguised as png",
			contentType: "image/png",
			data:        encode(t, gifEnc, 4, 3),
			wantCode:    apperr.CodeUnsupportedType,
		},
		{
			name:        "bmp disguised as jpeg",
			contentType: "image/jpeg",
			data:        encode(t, bmp.Encode, 4, 3),
			wantCode:    apperr.CodeUnsupportedType,
		},
		{
			name:        "too wide",
			contentType: "image/png",
			data:        encode(t, png.Encode, 4, 3),
			mutate:      func(c *configs.UploadConfig) { c.MaxWidth = 2 },
			wantCode:    apperr.CodeInvalidImage,
		},
		{
			name:        "too many pixels",
			contentType: "image/png",
			data:        encode(t, png.Encode, 4, 3),
			mutate:      func(c *configs.UploadConfig) { c.MaxPixels = 11 },
			wantCode:    apperr.CodeInvalidImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := newInspector(tt.mutate)
			img := &UploadedImage{ContentType: tt.contentType, Data: tt.data, Size: int64(len(tt.data))}

			result := inspector.Inspect(img, "Only JPG and PNG images are allowed.")
			if result.IsValid != tt.wantValid {
				t.Fatalf("IsValid = %v, want %v (err %v)", result.IsValid, tt.wantValid, result.Error)
			}
			if tt.wantValid {
				if result.Format != tt.wantFormat {
					t.Errorf("Format = %q, want %q", result.Format, tt.wantFormat)
				}
				if result.Width != 4 || result.Height != 3 {
					t.Errorf("dimensions = %dx%d, want 4x3", result.Width, result.Height)
				}
				return
			}

			var appErr *apperr.Error
			if !errors.As(result.Error, &appErr) {
				t.Fatalf("Error = %v, want *apperr.Error", result.Error)
			}
			if appErr.Kind != apperr.KindValidation || appErr.Code != tt.wantCode {
				t.Errorf("got kind %v code %s, want validation %s", appErr.Kind, appErr.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"image/jpeg": "jpeg",
		"image/jpg":  "jpeg",
		"IMAGE/PNG":  "png",
		"text/plain": "",
	}
	for in, want := range tests {
		if got := formatOf(in); got != want {
			t.Errorf("formatOf(%q) = %q, want %q", in, got, want)
		}
	}
}
