package relay

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/georgeshao/results-proxy/internal/envelope"
	"github.com/georgeshao/results-proxy/internal/records"
	"github.com/georgeshao/results-proxy/internal/upstream"
	"github.com/georgeshao/results-proxy/pkg/types"
)

type Fetcher interface {
	Fetch(ctx context.Context) (*upstream.Response, error)
}

// Relay runs one invocation end to end: fetch, validate, transform, wrap.
// It holds no per-invocation state, so a single Relay serves concurrent
// requests.
type Relay struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func New(fetcher Fetcher, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Handle never returns an error; every failure becomes an error envelope.
func (r *Relay) Handle(ctx context.Context, invocationID string, statusFilter string) types.Envelope {
	statusFilter = strings.TrimSpace(statusFilter)
	log := r.logger.With(
		zap.String("invocation_id", invocationID),
		zap.String("status_filter", statusFilter),
	)

	resp, err := r.fetcher.Fetch(ctx)
	if err != nil {
		log.Error("Upstream request failed", zap.Error(err))
		return envelope.Failure(err)
	}

	recs, err := upstream.Validate(resp)
	if err != nil {
		r.logRejected(log, resp, err)
		return envelope.Failure(err)
	}

	res := records.Transform(recs, statusFilter)

	log.Info("Transformed upstream results",
		zap.Int("upstream_status", resp.StatusCode),
		zap.Int("received", len(recs)),
		zap.Int("count", len(res.Records)),
		zap.Stringer("date_key", res.DateKey),
		zap.Stringer("sort_key", res.SortKey),
		zap.Stringer("status_key", res.StatusKey),
	)

	return envelope.Success(res.Records)
}

func (r *Relay) logRejected(log *zap.Logger, resp *upstream.Response, err error) {
	fields := []zap.Field{
		zap.Int("upstream_status", resp.StatusCode),
		zap.String("content_type", resp.ContentType),
		zap.Error(err),
	}

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		log.Warn("Upstream returned non-success status", fields...)
		return
	}
	log.Warn("Upstream returned unusable document", fields...)
}
