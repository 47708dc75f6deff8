package imaging

import (
	"fmt"
	"os"
	"path/filepath"
)

// ListImages returns the image files directly inside dir, sorted by name.
// The scan is deliberately non-recursive: subdirectories are skipped, so an
// output folder living inside the input folder is never picked up as input
// on a re-run.
func ListImages(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsImageFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}

// ScanDirectory lists the images in inputDir and pairs each with its
// computed output path under outputDir. An empty directory yields zero
// tasks, not an error.
func ScanDirectory(inputDir, outputDir string) ([]Task, error) {
	files, err := ListImages(inputDir)
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(files))
	for _, file := range files {
		tasks = append(tasks, Task{
			InputPath:  file,
			OutputPath: filepath.Join(outputDir, OutputName(filepath.Base(file))),
		})
	}

	return tasks, nil
}
