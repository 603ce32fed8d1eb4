package bytesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// FileSource reads samples from the local filesystem.
type FileSource struct {
	// ReadTimeout bounds a single OpenPrefix call; zero means only ctx applies.
	ReadTimeout time.Duration
}

// OpenPrefix implements Source.
func (s *FileSource) OpenPrefix(ctx context.Context, locator string, maxLen int) ([]byte, error) {
	_, path := Scheme(locator)
	if maxLen <= 0 {
		maxLen = DefaultMaxBytes
	}

	return readWithTimeout(ctx, locator, s.ReadTimeout, func() ([]byte, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, info.Mode().Type())
		}
		return readPrefix(f, maxLen)
	})
}

// readPrefix reads up to maxLen bytes from r. Short resources are not an error.
func readPrefix(r io.Reader, maxLen int) ([]byte, error) {
	buf := make([]byte, maxLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

type readResult struct {
	data []byte
	err  error
}

// readWithTimeout runs read on its own goroutine so a hung device or network
// mount cannot stall the caller past the deadline. The goroutine is abandoned
// on timeout; its result channel is buffered so it never leaks blocked.
func readWithTimeout(ctx context.Context, locator string, timeout time.Duration, read func() ([]byte, error)) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan readResult, 1)
	go func() {
		data, err := read()
		done <- readResult{data: data, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, accessError(locator, res.err)
		}
		return res.data, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, accessError(locator, ErrReadTimeout)
		}
		return nil, accessError(locator, ctx.Err())
	}
}
