package envelope

import (
	"errors"
	"net/http"

	"github.com/georgeshao/results-proxy/internal/upstream"
	"github.com/georgeshao/results-proxy/pkg/types"
)

func Success(results []types.Record) types.Envelope {
	if results == nil {
		results = []types.Record{}
	}
	return types.Envelope{
		StatusCode: http.StatusOK,
		Success:    true,
		Results:    results,
	}
}

// Failure maps err to the error envelope. Upstream status errors echo the
// upstream code, format errors are 502 and everything else is 500.
func Failure(err error) types.Envelope {
	return types.Envelope{
		StatusCode: StatusFor(err),
		Error:      err.Error(),
	}
}

func StatusFor(err error) int {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode >= 400 && statusErr.StatusCode <= 599 {
			return statusErr.StatusCode
		}
		return http.StatusBadGateway
	}

	var formatErr *upstream.FormatError
	if errors.As(err, &formatErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
