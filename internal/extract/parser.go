package extract

import (
	"encoding/json"
	"strings"

	"gradescan/pkg/models"
)

// ParseResponse extracts per-page records from a free-form model response.
//
// Model output format is not contractually guaranteed, so parsing runs in two
// stages, in this order:
//
//  1. Locate the first '[' and the last ']' in the body and parse the
//     substring between them as a JSON array.
//  2. If no bracket pair exists, parse the entire body as JSON; when that
//     yields an object with an "extractions" key, unwrap that key.
//
// Any decode failure surfaces as ErrUnparsableResponse.
func ParseResponse(body string) ([]models.PageExtraction, error) {
	const op = "ParseResponse"

	start := strings.Index(body, "[")
	end := strings.LastIndex(body, "]")

	if start >= 0 && end > start {
		var records []models.PageExtraction
		if err := json.Unmarshal([]byte(body[start:end+1]), &records); err != nil {
			return nil, WrapExtractionError(op, ErrUnparsableResponse, err.Error())
		}
		return records, nil
	}

	// No bracket pair: the model may have returned a bare object wrapping
	// the array under "extractions".
	var wrapped struct {
		Extractions []models.PageExtraction `json:"extractions"`
	}
	if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
		return nil, WrapExtractionError(op, ErrUnparsableResponse, err.Error())
	}
	if wrapped.Extractions == nil {
		return nil, WrapExtractionError(op, ErrUnparsableResponse, "no extraction array found in response")
	}
	return wrapped.Extractions, nil
}
