// Package download assembles selected messages into a single local artifact
// by issuing one byte-range fetch per record and concatenating the results.
package download

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/openclimdata/subgrib/internal/logger"
	"github.com/openclimdata/subgrib/pkg/errors"
	"github.com/openclimdata/subgrib/pkg/fsutil"
	"github.com/openclimdata/subgrib/pkg/httpc"
	"github.com/openclimdata/subgrib/pkg/model"
)

// RangeClient is the subset of the HTTP client used by the retriever.
type RangeClient interface {
	FetchRange(ctx context.Context, identifier string, offset, length int64, w io.Writer) error
}

var _ RangeClient = (*httpc.Client)(nil)

// Retriever fetches record byte ranges and writes them sequentially to an
// output file. Fetches are strictly in record order: the byte order of the
// artifact is part of the contract.
type Retriever struct {
	Client RangeClient
}

// Retrieve assembles records into the file at dest. The artifact is built
// in a temporary file and renamed only on full success, so no partial file
// is ever visible at dest. Data fetches are not retried; the first failure
// aborts the operation.
func (r *Retriever) Retrieve(ctx context.Context, records []model.Record, dest string) (err error) {
	if err := fsutil.EnsureDir(filepath.Dir(dest)); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".subgrib-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	for i := range records {
		rec := &records[i]
		logger.Debug("fetching segment", logger.Fields{
			"path":   rec.Path,
			"offset": rec.Offset,
			"length": rec.Length,
		})
		if err = r.Client.FetchRange(ctx, rec.Path, rec.Offset, rec.Length, tmp); err != nil {
			return err
		}
	}

	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync artifact")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close artifact")
	}
	if err = fsutil.Move(tmpPath, dest); err != nil {
		return errors.Wrap(err, "failed to finalize artifact")
	}

	logger.Info("assembled artifact", logger.Fields{
		"path":     dest,
		"messages": len(records),
	})
	return nil
}
