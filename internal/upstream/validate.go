package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/georgeshao/results-proxy/pkg/types"
)

const resultsKey = "results"

// Validate checks status and content type, then extracts the record
// collection from the document. A missing or null results field is an empty
// collection.
func Validate(resp *Response) ([]types.Record, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	if !isJSON(resp.ContentType) {
		return nil, &FormatError{
			ContentType: resp.ContentType,
			Message:     "Invalid response from upstream. Expected JSON but got: " + snippet(string(resp.Body)),
		}
	}

	recs, err := parseDocument(resp.Body)
	if err != nil {
		return nil, &FormatError{
			ContentType: resp.ContentType,
			Message:     "Invalid JSON from upstream",
			Err:         err,
		}
	}
	return recs, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

func parseDocument(body []byte) ([]types.Record, error) {
	if !json.Valid(body) {
		return nil, errors.New("body is not valid JSON")
	}

	_, docType, _, err := jsonparser.Get(body)
	if err != nil {
		return nil, err
	}
	if docType != jsonparser.Object {
		return nil, fmt.Errorf("document is %s, not an object", docType)
	}

	results, resultsType, _, err := jsonparser.Get(body, resultsKey)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return []types.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", resultsKey, err)
	}

	switch resultsType {
	case jsonparser.Null:
		return []types.Record{}, nil
	case jsonparser.Array:
	default:
		return nil, fmt.Errorf("%s is %s, not an array", resultsKey, resultsType)
	}

	recs := []types.Record{}
	var recErr error
	_, err = jsonparser.ArrayEach(results, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if recErr != nil {
			return
		}
		if err != nil {
			recErr = err
			return
		}
		if dataType != jsonparser.Object {
			recErr = fmt.Errorf("record %d is %s, not an object", len(recs), dataType)
			return
		}

		var rec types.Record
		if err := rec.UnmarshalJSON(value); err != nil {
			recErr = fmt.Errorf("record %d: %w", len(recs), err)
			return
		}
		recs = append(recs, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", resultsKey, err)
	}
	if recErr != nil {
		return nil, recErr
	}
	return recs, nil
}
