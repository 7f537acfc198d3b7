package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions are the files the cursor considers page images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// NextBatch returns the next unprocessed page images: up to batchSize paths,
// lexicographically first in workDir. An empty result means the directory is
// exhausted; that is the loop-termination signal, not an error.
func NextBatch(workDir string, batchSize int) ([]string, error) {
	names, err := listImages(workDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: NextBatch: %w", err)
	}
	if len(names) > batchSize {
		names = names[:batchSize]
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(workDir, name)
	}
	return paths, nil
}

// MarkConsumed deletes the n lexicographically-first page images in workDir.
// This is the batch's release mechanism: it must run exactly once per batch,
// after extraction succeeded or was abandoned, or the cursor re-serves the
// same pages forever.
func MarkConsumed(workDir string, n int) error {
	names, err := listImages(workDir)
	if err != nil {
		return fmt.Errorf("pipeline: MarkConsumed: %w", err)
	}
	if len(names) > n {
		names = names[:n]
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(workDir, name)); err != nil {
			return fmt.Errorf("pipeline: MarkConsumed: delete %s: %w", name, err)
		}
	}
	return nil
}

// listImages returns the image filenames in dir in lexicographic order, which
// the rasterizer's zero-padded naming makes identical to page order.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
