package analysis

import "image"

// maxLaplacianVariance is the variance treated as fully sharp; responses are
// normalized against it and capped at 1.0.
const maxLaplacianVariance = 500.0

// Sharpness scores an image in [0, 1] using Laplacian variance: a blurred
// image has weak edge responses and therefore low variance. 0.0 means very
// blurry, 1.0 sharp.
func Sharpness(img image.Image) float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	luma := make([]float64, w*h)
	for y := range h {
		for x := range w {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			luma[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	// 4-neighbor Laplacian over interior pixels.
	n := (w - 2) * (h - 2)
	responses := make([]float64, 0, n)
	var sum float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := luma[(y-1)*w+x] + luma[(y+1)*w+x] + luma[y*w+x-1] + luma[y*w+x+1] - 4*luma[y*w+x]
			responses = append(responses, v)
			sum += v
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, v := range responses {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	score := variance / maxLaplacianVariance
	if score > 1 {
		score = 1
	}
	return score
}
