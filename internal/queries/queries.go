// Package queries holds the data-access operations of the chat application.
//
// Every operation performs one persistence effect (or one transaction) through
// the injected gorm handle. A failing operation logs a fixed message, bumps the
// query failure counter and returns the driver error unchanged.
package queries

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/metrics"
)

var (
	ErrInvalidVoteType     = errors.New("queries: vote type must be up or down")
	ErrInvalidVisibility   = errors.New("queries: visibility must be private or public")
	ErrInvalidArtifactKind = errors.New("queries: unknown artifact kind")
)

type Queries struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

// DeleteResult reports the row counts of a two-step delete: dependent rows
// first, then the parent rows.
type DeleteResult struct {
	Dependents int64 `json:"dependents"`
	Parents    int64 `json:"parents"`
}

func failed(op, msg string, err error) error {
	metrics.QueryFailures.WithLabelValues(op).Inc()
	logger.Error(msg)
	return err
}

func failedWithErr(op, msg string, err error) error {
	metrics.QueryFailures.WithLabelValues(op).Inc()
	logger.Errorw(msg, "error", err)
	return err
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// now returns the current time at the precision both supported databases keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
