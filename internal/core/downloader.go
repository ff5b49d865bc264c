package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"glaunch/internal/domain"
)

// chunkSize is the transfer buffer size. Progress and cancellation are
// checked once per chunk, so this bounds cancellation latency.
const chunkSize = 8 * 1024

// speedSampleInterval throttles speed recomputation; per-chunk timing is
// too noisy to surface directly.
const speedSampleInterval = 500 * time.Millisecond

// speedSmoothing is the EMA weight given to the newest sample.
const speedSmoothing = 0.3

// DownloadProgress represents the current state of a transfer.
type DownloadProgress struct {
	TotalBytes int64   // -1 if the server did not declare a length
	Downloaded int64   // bytes transferred so far
	Percentage float64 // 0-100, or -1 when total is unknown
	SpeedBPS   float64 // smoothed bytes per second
}

// ProgressFunc is called after each chunk with progress updates. It must be
// cheap and non-blocking; a slow callback backpressures the transfer.
type ProgressFunc func(DownloadProgress)

// DownloadResult contains the outcome of a completed download.
type DownloadResult struct {
	Path string // final file path
	Size int64  // bytes downloaded
}

// Downloader performs single HTTP transfers with byte-level progress,
// smoothed speed computation, and cooperative cancellation. Writes land in
// a .part temporary first; the destination path only ever holds a complete
// file.
type Downloader struct {
	httpClient *http.Client
}

// NewDownloader creates a new Downloader with the given HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewDownloader(httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{
		httpClient: httpClient,
	}
}

// Download fetches url into destPath. Cancellation via ctx is honored
// within one chunk's latency, removes the partial file, and returns
// domain.ErrCancelled rather than a network error. Progress callbacks are
// strictly monotonically increasing in bytes transferred.
func (d *Downloader) Download(ctx context.Context, url, destPath string, progressFn ProgressFunc) (*DownloadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrCancelled
		}
		return nil, fmt.Errorf("%w: executing request: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d %s", domain.ErrNetwork, resp.StatusCode, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: creating directory: %v", domain.ErrFilesystem, err)
	}

	tempPath := destPath + ".part"
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("%w: creating file: %v", domain.ErrFilesystem, err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			file.Close()
			os.Remove(tempPath)
		}
	}()

	totalBytes := resp.ContentLength // -1 when the server omits it

	written, err := d.copyChunks(ctx, file, resp.Body, totalBytes, progressFn)
	if err != nil {
		return nil, err
	}

	if totalBytes > 0 && written != totalBytes {
		return nil, fmt.Errorf("%w: short read: got %d of %d bytes", domain.ErrNetwork, written, totalBytes)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing file: %v", domain.ErrFilesystem, err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		return nil, fmt.Errorf("%w: renaming file: %v", domain.ErrFilesystem, err)
	}
	cleanup = false

	return &DownloadResult{
		Path: destPath,
		Size: written,
	}, nil
}

// copyChunks streams body to file in fixed-size chunks, invoking progressFn
// after each one and checking for cancellation between chunks.
func (d *Downloader) copyChunks(ctx context.Context, file *os.File, body io.Reader, totalBytes int64, progressFn ProgressFunc) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64

	speed := newSpeedMeter()

	for {
		select {
		case <-ctx.Done():
			return written, domain.ErrCancelled
		default:
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("%w: writing chunk: %v", domain.ErrFilesystem, err)
			}
			written += int64(n)

			if progressFn != nil {
				progressFn(DownloadProgress{
					TotalBytes: totalBytes,
					Downloaded: written,
					Percentage: percentOf(written, totalBytes),
					SpeedBPS:   speed.Observe(written),
				})
			}
		}

		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			if ctx.Err() != nil || errors.Is(readErr, context.Canceled) {
				return written, domain.ErrCancelled
			}
			return written, fmt.Errorf("%w: reading response: %v", domain.ErrNetwork, readErr)
		}
	}
}

// HeadSize returns the declared content length of url using a header-only
// request, or -1 when it cannot be determined. Never returns an error; any
// failure means "unknown".
func (d *Downloader) HeadSize(ctx context.Context, url string) int64 {
	resp, ok := d.head(ctx, url)
	if !ok {
		return -1
	}
	return resp
}

// Exists reports whether url answers a header-only request with success.
// Any failure means "unknown" and is reported as false.
func (d *Downloader) Exists(ctx context.Context, url string) bool {
	_, ok := d.head(ctx, url)
	return ok
}

func (d *Downloader) head(ctx context.Context, url string) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return -1, false
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return -1, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return -1, false
	}
	return resp.ContentLength, true
}

func percentOf(written, total int64) float64 {
	if total <= 0 {
		return -1
	}
	return float64(written) / float64(total) * 100
}

// speedMeter computes a smoothed transfer rate: instantaneous rates are
// sampled no more often than speedSampleInterval and folded into an
// exponential moving average.
type speedMeter struct {
	lastSample time.Time
	lastBytes  int64
	ema        float64
}

func newSpeedMeter() *speedMeter {
	return &speedMeter{lastSample: time.Now()}
}

// Observe records the running byte count and returns the current smoothed
// rate in bytes per second.
func (s *speedMeter) Observe(totalWritten int64) float64 {
	now := time.Now()
	elapsed := now.Sub(s.lastSample)
	if elapsed < speedSampleInterval {
		return s.ema
	}

	instant := float64(totalWritten-s.lastBytes) / elapsed.Seconds()
	if s.ema == 0 {
		s.ema = instant
	} else {
		s.ema = speedSmoothing*instant + (1-speedSmoothing)*s.ema
	}

	s.lastSample = now
	s.lastBytes = totalWritten
	return s.ema
}

// FormatSpeed renders a byte rate for display.
func FormatSpeed(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 {
		return "--- B/s"
	}
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.0f B/s", bytesPerSecond)
	}
	kbps := bytesPerSecond / 1024
	if kbps < 1024 {
		return fmt.Sprintf("%.1f KB/s", kbps)
	}
	return fmt.Sprintf("%.1f MB/s", kbps/1024)
}
