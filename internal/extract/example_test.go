package extract_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"gradescan/internal/extract"
)

// Example demonstrates basic usage of the vision extractor.
func Example() {
	// Load .env file (using godotenv in main)
	// This should be done in your main() function:
	//
	// if err := godotenv.Load(); err != nil {
	//     log.Printf("Warning: Could not load .env file: %v", err)
	// }

	// Create context with timeout for the model call
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Create extractor - credentials come from GROQ_API_KEY
	extractor, err := extract.NewGroqVisionExtractor(extract.VisionConfig{})
	if err != nil {
		log.Fatalf("Failed to create extractor: %v", err)
	}

	// Submit one batch of rasterized page images
	records, err := extractor.ExtractBatch(ctx, []string{
		"exam_000.jpg",
		"exam_001.jpg",
	})
	if err != nil {
		log.Fatalf("Failed to extract batch: %v", err)
	}

	for _, rec := range records {
		fmt.Printf("Page %d (confidence %.2f): %s\n",
			rec.PageNumber, rec.ConfidenceText, rec.Text)
	}
}
