// Package analysis produces pipeline-ready photo records from image files:
// it decodes each image once and derives the sharpness score, the perceptual
// fingerprint, and the optional EXIF position/timestamp the album pipeline
// consumes.
package analysis

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	_ "golang.org/x/image/bmp"
	"golang.org/x/text/unicode/norm"

	"github.com/yp-ac/album-maker/internal/album"
	"github.com/yp-ac/album-maker/internal/fingerprint"
)

// Options controls a directory analysis pass.
type Options struct {
	// Concurrency is the number of files decoded in parallel (default 4).
	Concurrency int
	// ShowProgress renders a terminal progress bar during analysis.
	ShowProgress bool
}

// FileError reports one file that could not be analyzed. Individual failures
// do not abort the batch.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// ScanDir walks root recursively and returns the supported image files in
// sorted order.
func ScanDir(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// AnalyzeDir scans root and analyzes every supported image with a bounded
// worker pool. It returns the successfully analyzed photos in stable
// (path-sorted) order plus per-file errors for the rest.
func AnalyzeDir(ctx context.Context, root string, opts Options) ([]album.Photo, []FileError, error) {
	files, err := ScanDir(root)
	if err != nil {
		return nil, nil, err
	}
	return AnalyzeFiles(ctx, root, files, opts)
}

// fileResult holds the outcome of analyzing a single file.
type fileResult struct {
	index int
	photo album.Photo
	err   error
}

// AnalyzeFiles analyzes the given image files. Photo ids are the
// NFC-normalized slash paths relative to root, so the same tree produces the
// same ids on every platform.
func AnalyzeFiles(ctx context.Context, root string, files []string, opts Options) ([]album.Photo, []FileError, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription(fmt.Sprintf("Analyzing photos (%d workers)", concurrency)),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	resultsChan := make(chan fileResult, len(files))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i := range files {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				resultsChan <- fileResult{index: idx, err: ctx.Err()}
				return
			}

			photo, err := analyzeFile(root, path)
			resultsChan <- fileResult{index: idx, photo: photo, err: err}
			if bar != nil {
				bar.Add(1)
			}
		}(i, files[i])
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]*fileResult, len(files))
	for r := range resultsChan {
		results[r.index] = &r
	}
	if bar != nil {
		fmt.Println()
	}

	var photos []album.Photo
	var failures []FileError
	for i, r := range results {
		if r == nil {
			failures = append(failures, FileError{Path: files[i], Err: fmt.Errorf("no result")})
			continue
		}
		if r.err != nil {
			failures = append(failures, FileError{Path: files[i], Err: r.err})
			continue
		}
		photos = append(photos, r.photo)
	}
	return photos, failures, nil
}

// analyzeFile builds one pipeline-ready record: decode once, then derive
// sharpness and fingerprint from the same pixels, and metadata from EXIF.
func analyzeFile(root, path string) (album.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return album.Photo{}, fmt.Errorf("reading file: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return album.Photo{}, fmt.Errorf("decoding image: %w", err)
	}

	position, taken := extractMetadata(data)

	return album.Photo{
		ID:          PhotoID(root, path),
		Position:    position,
		TakenAt:     taken,
		Sharpness:   Sharpness(img),
		Fingerprint: fingerprint.Encode(fingerprint.ComputeFromImage(img)),
	}, nil
}

// PhotoID derives the stable photo id for a file: its slash path relative to
// root, NFC-normalized so decomposed filenames (macOS) and precomposed ones
// yield the same id.
func PhotoID(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return norm.NFC.String(filepath.ToSlash(rel))
}
