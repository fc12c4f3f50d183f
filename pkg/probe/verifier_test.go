package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/NVIDIA/rollout/pkg/errors"
)

func fastCheck(path string, status, attempts int) HealthCheckSpec {
	return HealthCheckSpec{
		Path:           path,
		ExpectedStatus: status,
		MaxAttempts:    attempts,
		Interval:       5 * time.Millisecond,
	}
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			w.WriteHeader(http.StatusOK)
		case "/readyz":
			w.WriteHeader(http.StatusOK)
		case "/version":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	v := NewVerifier()
	err := v.Verify(context.Background(), srv.URL, []HealthCheckSpec{
		fastCheck("/healthz", 200, 3),
		fastCheck("/readyz", 200, 3),
		fastCheck("/version", 200, 3),
	})
	require.NoError(t, err)
}

func TestVerify_RetriesUntilHealthy(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewVerifier()
	err := v.Verify(context.Background(), srv.URL, []HealthCheckSpec{
		fastCheck("/healthz", 200, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestVerify_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewVerifier()
	err := v.Verify(context.Background(), srv.URL, []HealthCheckSpec{
		fastCheck("/healthz", 200, 4),
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHealthCheckExhausted, apperrors.CodeOf(err))
	assert.Equal(t, int32(4), calls.Load())
	assert.Contains(t, err.Error(), "after 4 attempts")
}

func TestVerify_FailFastOrdering(t *testing.T) {
	var healthzCalls, readyzCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/healthz":
			healthzCalls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		case "/readyz":
			readyzCalls.Add(1)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	v := NewVerifier()
	err := v.Verify(context.Background(), srv.URL, []HealthCheckSpec{
		fastCheck("/healthz", 200, 2),
		fastCheck("/readyz", 200, 2),
	})

	require.Error(t, err)
	assert.Equal(t, int32(2), healthzCalls.Load())
	assert.Equal(t, int32(0), readyzCalls.Load(), "later checks must not run after exhaustion")
}

func TestVerify_ConnectionErrorIsRetryable(t *testing.T) {
	// Point at a closed port: every attempt errors, then exhausts.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	v := NewVerifier()
	err := v.Verify(context.Background(), endpoint, []HealthCheckSpec{
		fastCheck("/healthz", 200, 2),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHealthCheckExhausted, apperrors.CodeOf(err))
}

func TestVerify_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	v := NewVerifier()
	err := v.Verify(ctx, srv.URL, []HealthCheckSpec{
		{Path: "/healthz", ExpectedStatus: 200, MaxAttempts: 100, Interval: 50 * time.Millisecond},
	})

	require.Error(t, err)
	assert.NotEqual(t, apperrors.ErrCodeHealthCheckExhausted, apperrors.CodeOf(err))
}

func TestVerify_InvalidEndpoint(t *testing.T) {
	v := NewVerifier()
	err := v.Verify(context.Background(), "not-a-url", []HealthCheckSpec{
		fastCheck("/healthz", 200, 1),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidTarget, apperrors.CodeOf(err))
}

func TestParseCheck(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    HealthCheckSpec
		wantErr bool
	}{
		{
			name: "path with status",
			expr: "/healthz=200",
			want: HealthCheckSpec{Path: "/healthz", ExpectedStatus: 200},
		},
		{
			name: "bare path defaults to 200",
			expr: "/readyz",
			want: HealthCheckSpec{Path: "/readyz", ExpectedStatus: 200},
		},
		{
			name: "custom status",
			expr: "/admin=401",
			want: HealthCheckSpec{Path: "/admin", ExpectedStatus: 401},
		},
		{name: "empty", expr: "", wantErr: true},
		{name: "missing slash", expr: "healthz=200", wantErr: true},
		{name: "bad status", expr: "/healthz=abc", wantErr: true},
		{name: "status out of range", expr: "/healthz=999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCheck(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
