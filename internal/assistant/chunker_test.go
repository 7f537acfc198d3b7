package assistant

import (
	"strings"
	"testing"
)

func TestChunkText(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := ChunkText(text, 10, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0] != "abcdefghij" {
		t.Fatalf("unexpected first chunk: %s", chunks[0])
	}
	// Overlap: each chunk starts 8 runes after the previous.
	if chunks[1] != "ijklmnopqr" {
		t.Fatalf("unexpected second chunk: %s", chunks[1])
	}
	if !strings.HasSuffix(chunks[len(chunks)-1], "z") {
		t.Fatalf("last chunk must reach the end: %s", chunks[len(chunks)-1])
	}
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("short", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if chunks := ChunkText("", 1000, 200); chunks != nil {
		t.Fatalf("expected nil for empty input, got %v", chunks)
	}
}

func TestChunkTextOverlapClamped(t *testing.T) {
	// overlap >= size would never advance; it is clamped instead.
	chunks := ChunkText("abcdef", 3, 5)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i] == chunks[i-1] {
			t.Fatalf("chunker did not advance: %v", chunks)
		}
	}
}

func TestChunkTextMultibyte(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := ChunkText(text, 4, 1)
	for _, c := range chunks {
		if strings.ContainsRune(c, '�') {
			t.Fatalf("chunk split a multibyte rune: %q", c)
		}
	}
}
