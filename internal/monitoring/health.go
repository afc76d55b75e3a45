package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status encodes the outcome of a probe.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const defaultProbeTimeout = 2 * time.Second

// Result captures a single dependency check outcome.
type Result struct {
	Component string        `json:"component"`
	Status    Status        `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Report aggregates probe results for a liveness or readiness evaluation.
type Report struct {
	Success bool     `json:"success"`
	Status  Status   `json:"status"`
	Checks  []Result `json:"checks"`
}

// Probe inspects one dependency. A nil error means the dependency is up.
type Probe func(ctx context.Context) error

// Check is a named probe. Optional checks degrade a report instead of failing it.
type Check struct {
	Name     string
	Probe    Probe
	Optional bool
}

// Health coordinates liveness and readiness probes.
type Health struct {
	timeout   time.Duration
	liveness  []Check
	readiness []Check
}

// NewHealth constructs an empty registry. Each probe is bounded by timeout.
func NewHealth(timeout time.Duration) *Health {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Health{timeout: timeout}
}

// Live appends a liveness probe.
func (h *Health) Live(check Check) *Health {
	if check.Name != "" {
		h.liveness = append(h.liveness, check)
	}
	return h
}

// Ready appends a readiness probe.
func (h *Health) Ready(check Check) *Health {
	if check.Name != "" {
		h.readiness = append(h.readiness, check)
	}
	return h
}

// Liveness runs every liveness probe.
func (h *Health) Liveness(ctx context.Context) Report {
	return h.evaluate(ctx, h.liveness)
}

// Readiness runs every readiness probe.
func (h *Health) Readiness(ctx context.Context) Report {
	return h.evaluate(ctx, h.readiness)
}

func (h *Health) evaluate(ctx context.Context, checks []Check) Report {
	report := Report{
		Success: true,
		Status:  StatusUp,
		Checks:  make([]Result, 0, len(checks)),
	}

	for _, check := range checks {
		result := h.run(ctx, check)
		report.Checks = append(report.Checks, result)

		switch result.Status {
		case StatusDown:
			report.Success = false
			report.Status = StatusDown
		case StatusDegraded:
			if report.Status != StatusDown {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func (h *Health) run(ctx context.Context, check Check) (result Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = resultFromError(check, fmt.Errorf("probe panicked: %v", rec), time.Since(start))
		}
	}()

	if check.Probe == nil {
		return resultFromError(check, errors.New("probe not implemented"), 0)
	}
	return resultFromError(check, check.Probe(probeCtx), time.Since(start))
}

func resultFromError(check Check, err error, duration time.Duration) Result {
	result := Result{Component: check.Name, Status: StatusUp, Duration: duration}
	if err == nil {
		return result
	}

	result.Details = err.Error()
	result.Status = StatusDown
	if check.Optional || errors.Is(err, context.DeadlineExceeded) {
		result.Status = StatusDegraded
	}
	return result
}
