// Package imageproc prepares scanned receipts for OCR: grayscale conversion,
// median denoising and Otsu binarization.
package imageproc

import (
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// Result is the binarized image handed to OCR and the threshold that produced it.
type Result struct {
	Binary    *image.Gray
	Threshold uint8
}

// Preprocess runs the full chain on img.
func Preprocess(img image.Image) *Result {
	denoised := MedianFilter(Grayscale(img), 1)
	threshold := OtsuThreshold(denoised)
	return &Result{
		Binary:    Binarize(denoised, threshold),
		Threshold: threshold,
	}
}

// Grayscale converts any image to 8-bit luminance with its origin moved to 0,0.
func Grayscale(img image.Image) *image.Gray {
	nrgba := imaging.Grayscale(img)
	bounds := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+bounds.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// MedianFilter replaces each pixel with the median of its (2r+1)x(2r+1)
// neighbourhood. Edges are handled by clamping coordinates.
func MedianFilter(src *image.Gray, radius int) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	if radius <= 0 {
		copy(dst.Pix, src.Pix)
		return dst
	}

	side := 2*radius + 1
	window := make([]uint8, 0, side*side)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			window = window[:0]
			for dy := -radius; dy <= radius; dy++ {
				yy := clamp(y+dy, bounds.Min.Y, bounds.Max.Y-1)
				for dx := -radius; dx <= radius; dx++ {
					xx := clamp(x+dx, bounds.Min.X, bounds.Max.X-1)
					window = append(window, src.GrayAt(xx, yy).Y)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			dst.SetGray(x, y, color.Gray{Y: window[len(window)/2]})
		}
	}
	return dst
}

// OtsuThreshold picks the threshold that maximizes between-class variance of
// the histogram.
func OtsuThreshold(img *image.Gray) uint8 {
	var histogram [256]int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			histogram[img.GrayAt(x, y).Y]++
		}
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for level, count := range histogram {
		sum += float64(level * count)
	}

	var (
		sumBackground float64
		weightBack    int
		bestVariance  float64
		threshold     uint8
	)
	for level := 0; level < 256; level++ {
		weightBack += histogram[level]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}

		sumBackground += float64(level * histogram[level])
		meanBack := sumBackground / float64(weightBack)
		meanFore := (sum - sumBackground) / float64(weightFore)

		diff := meanBack - meanFore
		variance := float64(weightBack) * float64(weightFore) * diff * diff
		if variance > bestVariance {
			bestVariance = variance
			threshold = uint8(level)
		}
	}
	return threshold
}

// Binarize maps pixels above threshold to white and the rest to black.
func Binarize(src *image.Gray, threshold uint8) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		if v > threshold {
			dst.Pix[i] = 255
		}
	}
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
