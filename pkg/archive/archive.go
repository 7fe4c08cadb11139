// Package archive stores the backend's bulk tree archive.
//
// The archive is streamed from the tree client straight into a Sink. Two
// sinks exist: a local file and an S3 object.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/marmos91/dittoview/internal/logger"
)

// Sink receives one archive stream.
type Sink interface {
	// Store consumes r until EOF and commits the result. Nothing is
	// committed when r fails.
	Store(ctx context.Context, r io.Reader) (int64, error)

	// Name describes the destination for logs and metrics.
	Name() string
}

// Downloader produces the archive stream. Satisfied by *treeclient.Client.
type Downloader interface {
	DownloadArchive(ctx context.Context, w io.Writer) (int64, error)
}

// Metrics observes archive transfers.
type Metrics interface {
	ObserveArchive(sink string, bytes int64, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveArchive(string, int64, time.Duration, error) {}

// Archiver copies the backend archive into a sink.
type Archiver struct {
	source  Downloader
	sink    Sink
	metrics Metrics
}

// New creates an Archiver. A nil Metrics disables collection.
func New(source Downloader, sink Sink, m Metrics) *Archiver {
	if m == nil {
		m = noopMetrics{}
	}
	return &Archiver{source: source, sink: sink, metrics: m}
}

// Run downloads the archive and stores it, returning the stored size.
//
// A download failure takes precedence over the sink error it causes.
func (a *Archiver) Run(ctx context.Context) (int64, error) {
	start := time.Now()
	pr, pw := io.Pipe()

	downloaded := make(chan error, 1)
	go func() {
		_, err := a.source.DownloadArchive(ctx, pw)
		_ = pw.CloseWithError(err)
		downloaded <- err
	}()

	n, storeErr := a.sink.Store(ctx, pr)
	// Unblock the downloader if the sink gave up early.
	_ = pr.CloseWithError(errSinkClosed)
	downloadErr := <-downloaded

	var err error
	switch {
	case downloadErr != nil && !errors.Is(downloadErr, errSinkClosed):
		err = fmt.Errorf("download archive: %w", downloadErr)
	case storeErr != nil:
		err = fmt.Errorf("store archive to %s: %w", a.sink.Name(), storeErr)
	}

	a.metrics.ObserveArchive(a.sink.Name(), n, time.Since(start), err)
	if err != nil {
		return 0, err
	}

	logger.Info("Archive stored: sink=%s bytes=%d elapsed=%s", a.sink.Name(), n, time.Since(start).Round(time.Millisecond))
	return n, nil
}

var errSinkClosed = errors.New("archive sink closed")
