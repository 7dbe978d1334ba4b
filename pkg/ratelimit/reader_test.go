package ratelimit

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLimiter(t *testing.T) {
	t.Run("ValidBytesPerSecond", func(t *testing.T) {
		limiter := NewLimiter(1024 * 1024)
		require.NotNil(t, limiter)
		assert.Equal(t, int64(1024*1024), limiter.BytesPerSecond())
		assert.Equal(t, 1024*1024, limiter.Burst(), "burst should be one second of data")
	})

	t.Run("DisabledLimits", func(t *testing.T) {
		for _, bps := range []int64{0, -100} {
			assert.Nil(t, NewLimiter(bps), "NewLimiter(%d) should disable limiting", bps)
		}
	})

	t.Run("SmallLimitUsesMinimumBurst", func(t *testing.T) {
		assert.Equal(t, minBurst, NewLimiter(1000).Burst())
	})
}

func TestNewReader(t *testing.T) {
	t.Run("WithLimiter", func(t *testing.T) {
		reader := NewReader(context.Background(), strings.NewReader("test content"), NewLimiter(1024*1024))
		assert.IsType(t, &Reader{}, reader)
	})

	t.Run("NilLimiter", func(t *testing.T) {
		base := strings.NewReader("test content")
		assert.Same(t, base, NewReader(context.Background(), base, nil))
	})
}

func TestReaderRead(t *testing.T) {
	t.Run("ReadAll", func(t *testing.T) {
		content := []byte("# Notes\n\nsome markdown content\n")
		reader := NewReader(context.Background(), bytes.NewReader(content), NewLimiter(1024*1024))

		got, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("ContextCancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		reader := NewReader(ctx, bytes.NewReader(make([]byte, 1024)), NewLimiter(1024*1024))
		_, err := reader.Read(make([]byte, 100))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ReadsCappedAtBurst", func(t *testing.T) {
		reader := NewReader(context.Background(), bytes.NewReader(make([]byte, 3*minBurst)), NewLimiter(1000))

		n, err := reader.Read(make([]byte, 2*minBurst))
		require.NoError(t, err)
		assert.Equal(t, minBurst, n)
	})
}

func TestReadCloser(t *testing.T) {
	t.Run("WithLimiter", func(t *testing.T) {
		rc := NewReadCloser(context.Background(), io.NopCloser(strings.NewReader("test content")), NewLimiter(1024*1024))
		assert.IsType(t, &ReadCloser{}, rc)

		_, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.NoError(t, rc.Close())
	})

	t.Run("NilLimiter", func(t *testing.T) {
		base := io.NopCloser(strings.NewReader("test content"))
		assert.Equal(t, base, NewReadCloser(context.Background(), base, nil))
	})
}

func TestRateLimiting(t *testing.T) {
	// The bucket starts full, so the second burst has to wait for a refill
	limiter := NewLimiter(minBurst * 10)
	reader := NewReader(context.Background(), bytes.NewReader(make([]byte, 12*minBurst)), limiter)

	start := time.Now()
	_, err := io.Copy(io.Discard, reader)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond, "reading past the burst should be throttled")
}

func TestWaitN_DeadlineExceeded(t *testing.T) {
	limiter := NewLimiter(1000)
	ctx := context.Background()

	require.NoError(t, limiter.WaitN(ctx, minBurst))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.WaitN(ctx, minBurst), "the bucket cannot refill before the deadline")
}

func BenchmarkRateLimitedRead(b *testing.B) {
	content := make([]byte, 1024*1024)
	limiter := NewLimiter(1024 * 1024 * 1024)
	buf := make([]byte, 64*1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reader := NewReader(context.Background(), bytes.NewReader(content), limiter)
		for {
			if _, err := reader.Read(buf); err == io.EOF {
				break
			}
		}
	}
}
