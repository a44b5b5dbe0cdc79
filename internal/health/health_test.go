package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(detail string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return detail, nil }
}

func TestRunOrdersByRole(t *testing.T) {
	eps := Run(context.Background(), time.Second,
		Probe{Role: RolePaymaster, URL: "p", Check: ok("chain 80001")},
		Probe{Role: RoleNode, URL: "n", Check: ok("block 10")},
		Probe{Role: RoleBundler, URL: "b", Check: ok("EntryPoint supported")},
	)
	require.Len(t, eps, 3)
	assert.Equal(t, RoleNode, eps[0].Role)
	assert.Equal(t, RoleBundler, eps[1].Role)
	assert.Equal(t, RolePaymaster, eps[2].Role)
	assert.Equal(t, "block 10", eps[0].Detail)
	assert.True(t, AllHealthy(eps))
}

func TestRunReportsFailure(t *testing.T) {
	boom := errors.New("connection refused")
	eps := Run(context.Background(), time.Second,
		Probe{Role: RoleNode, URL: "n", Check: ok("block 1")},
		Probe{Role: RoleBundler, URL: "b", Check: func(context.Context) (string, error) { return "", boom }},
	)
	assert.False(t, eps[1].Healthy)
	assert.ErrorIs(t, eps[1].Err, boom)
	assert.False(t, AllHealthy(eps))
}

func TestRunTimesOutSlowProbe(t *testing.T) {
	slow := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	start := time.Now()
	eps := Run(context.Background(), 20*time.Millisecond, Probe{Role: RoleNode, Check: slow})
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, eps[0].Err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, eps[0].Latency, 20*time.Millisecond)
}

func TestRunProbesInParallel(t *testing.T) {
	wait := func(ctx context.Context) (string, error) {
		time.Sleep(50 * time.Millisecond)
		return "", nil
	}
	start := time.Now()
	Run(context.Background(), time.Second,
		Probe{Role: RoleNode, Check: wait},
		Probe{Role: RoleBundler, Check: wait},
		Probe{Role: RolePaymaster, Check: wait},
	)
	assert.Less(t, time.Since(start), 140*time.Millisecond)
}

func TestRunNoProbes(t *testing.T) {
	assert.Empty(t, Run(context.Background(), 0))
	assert.True(t, AllHealthy(nil))
}
