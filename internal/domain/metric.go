package domain

import "fmt"

// ModelCategory classifies an artifact's model type. The category of
// the first artifact ever reported for a project selects the project's
// default sort metric.
type ModelCategory string

// Model categories recognized by the default-metric mapping.
const (
	// CategoryBinomial identifies a binary classifier.
	CategoryBinomial ModelCategory = "binomial"

	// CategoryMultinomial identifies a multiclass classifier.
	CategoryMultinomial ModelCategory = "multinomial"

	// CategoryRegression identifies a supervised regression model.
	CategoryRegression ModelCategory = "regression"

	// CategoryUnknown identifies any model the default-metric mapping
	// cannot serve, such as unsupervised or custom model types.
	CategoryUnknown ModelCategory = "unknown"
)

// Metric names a ranking metric and the direction in which it orders.
type Metric struct {
	// Name is the metric identifier, e.g. "auc".
	Name string `json:"name" yaml:"name"`

	// Descending is true when larger values rank better.
	Descending bool `json:"descending" yaml:"descending"`
}

// Standard metrics used by the category-based default selection.
var (
	// MetricAUC ranks binary classifiers, larger is better.
	MetricAUC = Metric{Name: "auc", Descending: true}

	// MetricMeanPerClassError ranks multiclass classifiers, smaller is better.
	MetricMeanPerClassError = Metric{Name: "mean_per_class_error", Descending: false}

	// MetricMeanResidualDeviance ranks regression models, smaller is better.
	MetricMeanResidualDeviance = Metric{Name: "mean_residual_deviance", Descending: false}
)

// DefaultMetricFor maps a model category to its default sort metric.
// Categories outside the binomial/multinomial/regression set have no
// default; the caller is expected to leave the record unsorted for the
// round rather than guess a fallback (this is a deliberate no-op path,
// not an error to recover from).
func DefaultMetricFor(category ModelCategory) (Metric, error) {
	switch category {
	case CategoryBinomial:
		return MetricAUC, nil
	case CategoryMultinomial:
		return MetricMeanPerClassError, nil
	case CategoryRegression:
		return MetricMeanResidualDeviance, nil
	default:
		return Metric{}, fmt.Errorf("%w: no default metric for model category %q",
			ErrMetricUnavailable, category)
	}
}
