package internal

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// throttledReader paces reads through a token bucket measured in bytes
type throttledReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// NewThrottledReader limits r to kibPerSecond KiB/s. A non-positive limit returns r unchanged.
func NewThrottledReader(ctx context.Context, r io.Reader, kibPerSecond int) io.Reader {
	if kibPerSecond <= 0 {
		return r
	}
	bytesPerSecond := kibPerSecond * 1024
	return &throttledReader{
		ctx:     ctx,
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
	}
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if burst := t.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := t.r.Read(p)
	if n > 0 {
		if waitErr := t.limiter.WaitN(t.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
