package commands

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chenzhangda16/paygraph/internal/paygraph/archive"
	"github.com/chenzhangda16/paygraph/internal/paygraph/config"
	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
	"github.com/chenzhangda16/paygraph/internal/paygraph/writer"
)

// sharedSinks opens the structured sinks every stream writes to. They are safe
// for concurrent use; the caller closes the returned Fanout.
func sharedSinks(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (out.Fanout, error) {
	var sinks out.Fanout
	if cfg.SQL.Driver != "" {
		w, err := writer.Open(ctx, cfg.SQL.Driver, cfg.SQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sql writer: %w", err)
		}
		log.Infow("writing medians to sql", "driver", cfg.SQL.Driver)
		sinks = append(sinks, w)
	}
	if cfg.ArchivePath != "" {
		a, err := archive.Open(cfg.ArchivePath)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("open archive: %w", err), sinks.Close())
		}
		log.Infow("archiving medians", "path", cfg.ArchivePath)
		sinks = append(sinks, a)
	}
	return sinks, nil
}
