// Package fingerprint computes and compares 64-bit perceptual image hashes.
// Visually similar images produce fingerprints with a low Hamming distance,
// which is the sole duplicate signal the pipeline uses.
package fingerprint

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"
	"strconv"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// dctSize is the working size for the DCT; the hash keeps only the top-left
// hashSize x hashSize low-frequency block.
const (
	dctSize  = 32
	hashSize = 8
)

// Compute decodes imageData and returns its perceptual hash as 16 hex
// characters.
func Compute(imageData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	return Encode(ComputeFromImage(img)), nil
}

// ComputeFromImage returns the raw 64-bit perceptual hash of a decoded
// image: a 32x32 grayscale DCT, keeping one bit per low-frequency
// coefficient depending on whether it exceeds the block median. The DC
// coefficient is skipped so overall brightness does not dominate.
func ComputeFromImage(img image.Image) uint64 {
	gray := grayscale(scale(img, dctSize, dctSize))
	coeffs := dct2d(gray, dctSize)

	// Collect the low-frequency block, DC excluded.
	low := make([]float64, 0, hashSize*hashSize)
	for u := range hashSize {
		for v := range hashSize {
			if u == 0 && v == 0 {
				continue
			}
			low = append(low, coeffs[u*dctSize+v])
		}
	}

	m := median(low)
	var hash uint64
	for i, c := range low {
		if c > m {
			hash |= 1 << (63 - i)
		}
	}
	return hash
}

// Encode renders a raw hash as 16 lowercase hex characters.
func Encode(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}

// Parse converts a hex-encoded fingerprint back to its raw 64 bits.
func Parse(s string) (uint64, error) {
	if len(s) == 0 || len(s) > 16 {
		return 0, fmt.Errorf("fingerprint must be 1-16 hex characters, got %d", len(s))
	}
	bits, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	return bits, nil
}

// HammingDistance counts the differing bits between two hashes.
func HammingDistance(a, b uint64) int {
	xor := a ^ b
	distance := 0
	for xor != 0 {
		distance++
		xor &= xor - 1 // Clear lowest set bit
	}
	return distance
}

// Similar reports whether two hashes are within threshold differing bits.
// A threshold of 10 is typical for near-duplicate detection.
func Similar(a, b uint64, threshold int) bool {
	return HammingDistance(a, b) <= threshold
}

// scale resizes an image to width x height with bilinear interpolation.
func scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// grayscale flattens an image into row-major luma values (0-255) using the
// ITU-R BT.601 weights.
func grayscale(img *image.RGBA) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]float64, w*h)
	for y := range h {
		for x := range w {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return out
}

// dct2d computes the two-dimensional DCT-II of a size x size row-major
// block. Cosines are precomputed once per call.
func dct2d(block []float64, size int) []float64 {
	cos := make([]float64, size*size)
	for k := range size {
		for n := range size {
			cos[k*size+n] = math.Cos(math.Pi * float64(k) * (2*float64(n) + 1) / (2 * float64(size)))
		}
	}

	out := make([]float64, size*size)
	for u := range size {
		for v := range size {
			var sum float64
			for x := range size {
				for y := range size {
					sum += block[y*size+x] * cos[u*size+x] * cos[v*size+y]
				}
			}
			out[u*size+v] = sum
		}
	}
	return out
}

// median returns the median of values without modifying them.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
