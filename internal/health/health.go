// Package health probes the endpoints w3vault depends on and reports their
// latency and state.
package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 5 * time.Second

// Role names what an endpoint is used for.
type Role string

const (
	RoleNode      Role = "node"
	RoleBundler   Role = "bundler"
	RolePaymaster Role = "paymaster"
)

var roleOrder = map[Role]int{RoleNode: 0, RoleBundler: 1, RolePaymaster: 2}

// Probe checks one endpoint and returns a short status detail.
type Probe struct {
	Role  Role
	URL   string
	Check func(ctx context.Context) (detail string, err error)
}

// Endpoint is the outcome of one probe.
type Endpoint struct {
	Role    Role
	URL     string
	Latency time.Duration
	Detail  string
	Healthy bool
	Err     error
}

// Run executes probes in parallel, each bounded by timeout, and returns the
// results ordered node, bundler, paymaster.
func Run(ctx context.Context, timeout time.Duration, probes ...Probe) []Endpoint {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	results := make([]Endpoint, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			detail, err := p.Check(pctx)
			results[i] = Endpoint{
				Role:    p.Role,
				URL:     p.URL,
				Latency: time.Since(start),
				Detail:  detail,
				Healthy: err == nil,
				Err:     err,
			}
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return roleOrder[results[i].Role] < roleOrder[results[j].Role]
	})
	return results
}

// AllHealthy reports whether every endpoint passed.
func AllHealthy(eps []Endpoint) bool {
	for _, e := range eps {
		if !e.Healthy {
			return false
		}
	}
	return true
}
