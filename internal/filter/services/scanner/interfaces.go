package scanner

import (
	"context"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// StatsSink receives one record per blocked video.
type StatsSink interface {
	Record(rec domain.BlockRecord)
	Flush(ctx context.Context) error
}

// Unblocker removes blocked creators matching a channel name.
type Unblocker interface {
	UnblockChannel(ctx context.Context, channelName string) ([]string, error)
}
