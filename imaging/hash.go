package imaging

import (
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"

	"github.com/corona10/goimagehash"
	"golang.org/x/sync/errgroup"
)

// CalculatePerceptualHash decodes an image file and computes its perception hash
func CalculatePerceptualHash(path string) (*goimagehash.ImageHash, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate perceptual hash: %w", err)
	}

	return hash, nil
}

// FindDuplicatesByHash scans a directory for images and groups those with
// identical perception hashes. Hashing fans out across CPUs. Files that fail
// to decode are skipped; they cannot duplicate anything we can read. The
// optional onProgress callback fires once per examined file.
func FindDuplicatesByHash(directory string, onProgress func()) (map[string][]string, error) {
	files, err := ListImages(directory)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	hashToFiles := make(map[string][]string)

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for _, path := range files {
		path := path
		g.Go(func() error {
			defer func() {
				if onProgress != nil {
					mu.Lock()
					onProgress()
					mu.Unlock()
				}
			}()

			hash, err := CalculatePerceptualHash(path)
			if err != nil {
				return nil // unreadable image, skip
			}

			mu.Lock()
			key := hash.ToString()
			hashToFiles[key] = append(hashToFiles[key], path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Filter out hashes with only one file (not duplicates)
	duplicates := make(map[string][]string)
	for hash, files := range hashToFiles {
		if len(files) > 1 {
			duplicates[hash] = files
		}
	}

	return duplicates, nil
}
