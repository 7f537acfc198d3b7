package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeImages(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("doc_%03d.jpg", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestNextBatchOrderAndLimit(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, 7)

	batch, err := NextBatch(dir, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("expected 5 paths, got %d", len(batch))
	}
	if filepath.Base(batch[0]) != "doc_000.jpg" || filepath.Base(batch[4]) != "doc_004.jpg" {
		t.Fatalf("unexpected batch order: %v", batch)
	}
}

func TestNextBatchIgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	batch, err := NextBatch(dir, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 image paths, got %d: %v", len(batch), batch)
	}
}

func TestCursorConsumesDirectory(t *testing.T) {
	dir := t.TempDir()
	const pages, batchSize = 7, 3
	writeImages(t, dir, pages)

	batches := 0
	for {
		batch, err := NextBatch(dir, batchSize)
		if err != nil {
			t.Fatalf("NextBatch failed: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		batches++
		if err := MarkConsumed(dir, len(batch)); err != nil {
			t.Fatalf("MarkConsumed failed: %v", err)
		}
		if batches > pages {
			t.Fatal("cursor did not terminate")
		}
	}

	// ceil(7/3) = 3 batches
	if batches != 3 {
		t.Fatalf("expected 3 batches, got %d", batches)
	}

	remaining, err := NextBatch(dir, batchSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty directory, got %v", remaining)
	}
}

func TestMarkConsumedDeletesEarliest(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, 4)

	if err := MarkConsumed(dir, 2); err != nil {
		t.Fatalf("MarkConsumed failed: %v", err)
	}

	batch, err := NextBatch(dir, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 remaining images, got %d", len(batch))
	}
	if filepath.Base(batch[0]) != "doc_002.jpg" {
		t.Fatalf("expected earliest images removed, next is %s", filepath.Base(batch[0]))
	}
}
