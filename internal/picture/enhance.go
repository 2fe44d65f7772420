// Package picture wraps raster-image adjustments used by the image tools.
package picture

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Options are multiplicative adjustment factors: 1.0 leaves the channel
// unchanged, values above brighten/strengthen, below weaken. BlurRadius is
// in pixels; Filter is an optional named transform.
type Options struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Sharpness  float64
	BlurRadius float64
	Filter     string // "", "grayscale", "invert"
}

// PresentationPreset is the fixed "presentation" enhancement style: a mild
// brightness/contrast/saturation lift that keeps photos legible on screen.
func PresentationPreset() Options {
	return Options{
		Brightness: 1.05,
		Contrast:   1.15,
		Saturation: 1.10,
		Sharpness:  1.10,
	}
}

// Enhance re-encodes the image at srcPath with the given adjustments and
// returns the path written. An empty outputPath derives one next to the
// source ("photo.png" -> "photo_enhanced.png").
func Enhance(srcPath string, opts Options, outputPath string) (string, error) {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}

	out := applyAdjustments(img, opts)

	if outputPath == "" {
		ext := filepath.Ext(srcPath)
		outputPath = strings.TrimSuffix(srcPath, ext) + "_enhanced" + ext
	}
	if err := imaging.Save(out, outputPath); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return outputPath, nil
}

func applyAdjustments(img image.Image, opts Options) image.Image {
	out := img
	if opts.Brightness != 0 && opts.Brightness != 1 {
		out = imaging.AdjustBrightness(out, (opts.Brightness-1)*100)
	}
	if opts.Contrast != 0 && opts.Contrast != 1 {
		out = imaging.AdjustContrast(out, (opts.Contrast-1)*100)
	}
	if opts.Saturation != 0 && opts.Saturation != 1 {
		out = imaging.AdjustSaturation(out, (opts.Saturation-1)*100)
	}
	if opts.Sharpness > 1 {
		out = imaging.Sharpen(out, opts.Sharpness-1)
	}
	if opts.BlurRadius > 0 {
		out = imaging.Blur(out, opts.BlurRadius)
	}
	switch opts.Filter {
	case "grayscale":
		out = imaging.Grayscale(out)
	case "invert":
		out = imaging.Invert(out)
	}
	return out
}

// Probe returns the pixel dimensions and sniffed content type of an encoded
// image without fully decoding it.
func Probe(data []byte) (width, height int, contentType string, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, http.DetectContentType(data), nil
}
