package addons

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Failure is a tracked addon that could not be updated.
type Failure struct {
	Addon types.Addon
	Err   error
}

// UpdateReport collects the per-addon results of UpdateAll. Outcomes and
// Failures keep the manifest order.
type UpdateReport struct {
	Outcomes []Outcome
	Failures []Failure
}

// Updated returns the outcomes that installed a new version.
func (r *UpdateReport) Updated() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Changed {
			out = append(out, o)
		}
	}
	return out
}

// Err joins the per-addon failures, or returns nil when all succeeded.
func (r *UpdateReport) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s (%s): %w", f.Addon.ID, f.Addon.Flavor, f.Err))
	}
	return stderrors.Join(errs...)
}

// UpdateAll updates every tracked addon of flavor, or of every flavor when
// flavor is nil. Addons are processed by a bounded pool; one addon failing
// never stops the others. The returned error is only set when the tracked
// set itself cannot be read.
func (m *Manager) UpdateAll(ctx context.Context, flavor *types.Flavor) (*UpdateReport, error) {
	logger := logging.GetLogger("addons")
	done := logging.LogOperationStart(logger, "update-all")
	defer done()

	tracked, err := m.repo.List(ctx, flavor)
	if err != nil {
		return nil, err
	}

	outcomes := make([]*Outcome, len(tracked))
	errs := make([]error, len(tracked))

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i, addon := range tracked {
		g.Go(func() error {
			outcome, err := m.install(ctx, addon.ID, addon.Flavor)
			outcomes[i], errs[i] = outcome, err
			if err != nil {
				logger.Warn().Err(err).Str("slug", addon.ID).Str("flavor", addon.Flavor.String()).
					Msg("Failed to update addon")
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &UpdateReport{}
	for i, addon := range tracked {
		if errs[i] != nil {
			report.Failures = append(report.Failures, Failure{Addon: addon, Err: errs[i]})
			continue
		}
		report.Outcomes = append(report.Outcomes, *outcomes[i])
	}

	logger.Info().Int("tracked", len(tracked)).Int("updated", len(report.Updated())).
		Int("failed", len(report.Failures)).Msg("Finished updating addons")
	return report, nil
}
