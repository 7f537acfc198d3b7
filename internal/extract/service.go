// Package extract sends batches of rasterized page images to a multimodal
// vision model and parses the structured per-page results.
//
// One request is issued per batch: the fixed instruction prompt followed by
// each image, tagged with its 1-based position within the batch. Page numbers
// in the returned records are therefore batch-local; the caller owns the
// running page offset that globalizes them.
//
// The model endpoint is any OpenAI-compatible chat completions API with image
// input support; Groq is the default.
//
// Required Environment Variables:
//   - GROQ_API_KEY: API key for the extraction endpoint
package extract

import (
	"context"

	"gradescan/pkg/models"
)

// Extractor defines the interface for vision-model page extraction.
type Extractor interface {
	// ExtractBatch submits one batch of page images and returns the parsed
	// per-page records. PageNumber on the results is batch-local (1-based).
	//
	// A response that cannot be parsed returns an error matching
	// ErrUnparsableResponse; transport failures match ErrRemoteCall.
	ExtractBatch(ctx context.Context, imagePaths []string) ([]models.PageExtraction, error)
}
