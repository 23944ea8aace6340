// Package discovery provides the gating predicates that decide when a
// cluster node lookup is complete: either the desired number of worker
// nodes has been discovered or a time budget has elapsed.
package discovery

import (
	"log/slog"
	"time"

	"github.com/podium-ml/podium/internal/countdown"
)

// DefaultLookupTimeout bounds node discovery when the caller configures
// neither a timeout nor a desired cluster size.
const DefaultLookupTimeout = 120 * time.Second

// Constraint decides whether a node lookup may end, given the set of
// node addresses discovered so far. Constraints are evaluated after
// every discovery round; the lookup ends when any constraint is
// satisfied.
type Constraint interface {
	LookupEnded(discovered map[string]struct{}) bool
}

var _ Constraint = (*ClusterSizeConstraint)(nil)

// ClusterSizeConstraint ends the lookup once the discovered set reaches
// the desired cluster size.
type ClusterSizeConstraint struct {
	desired int
}

// NewClusterSizeConstraint creates a constraint satisfied at exactly
// the desired number of discovered nodes.
func NewClusterSizeConstraint(desired int) *ClusterSizeConstraint {
	return &ClusterSizeConstraint{desired: desired}
}

// LookupEnded implements Constraint.
func (c *ClusterSizeConstraint) LookupEnded(discovered map[string]struct{}) bool {
	return len(discovered) >= c.desired
}

var _ Constraint = (*TimeoutConstraint)(nil)

// TimeoutConstraint ends the lookup once its time budget has elapsed,
// regardless of how many nodes were discovered.
type TimeoutConstraint struct {
	cd *countdown.Countdown
}

// NewTimeoutConstraint creates a constraint whose countdown starts
// immediately.
func NewTimeoutConstraint(timeout time.Duration) *TimeoutConstraint {
	return &TimeoutConstraint{cd: countdown.NewStarted(timeout)}
}

// LookupEnded implements Constraint.
func (c *TimeoutConstraint) LookupEnded(map[string]struct{}) bool {
	return c.cd.TimedOut()
}

// ConstraintBuilder assembles the lookup constraints from optional
// settings. When neither a timeout nor a desired cluster size is
// configured, a default timeout guards against waiting forever.
type ConstraintBuilder struct {
	timeout     *time.Duration
	clusterSize *int
	logger      *slog.Logger
}

// NewConstraintBuilder creates a builder with no settings. A nil logger
// falls back to slog.Default.
func NewConstraintBuilder(logger *slog.Logger) *ConstraintBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConstraintBuilder{logger: logger}
}

// WithTimeout sets the lookup time budget.
func (b *ConstraintBuilder) WithTimeout(timeout time.Duration) *ConstraintBuilder {
	b.timeout = &timeout
	return b
}

// WithClusterSize sets the desired number of discovered nodes.
func (b *ConstraintBuilder) WithClusterSize(size int) *ConstraintBuilder {
	b.clusterSize = &size
	return b
}

// Build returns the configured constraints, adding the default timeout
// when nothing was configured.
func (b *ConstraintBuilder) Build() []Constraint {
	var constraints []Constraint

	if b.timeout == nil && b.clusterSize == nil {
		b.logger.Info("no node discovery constraints set, using default timeout",
			"timeout", DefaultLookupTimeout)
		constraints = append(constraints, NewTimeoutConstraint(DefaultLookupTimeout))
	}

	if b.timeout != nil {
		constraints = append(constraints, NewTimeoutConstraint(*b.timeout))
	}
	if b.clusterSize != nil {
		constraints = append(constraints, NewClusterSizeConstraint(*b.clusterSize))
	}
	return constraints
}
