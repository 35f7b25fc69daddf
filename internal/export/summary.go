package export

import (
	"fmt"
	"io"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/compare-methods/alphadiv/internal/batch"
	"github.com/compare-methods/alphadiv/internal/table"
)

// Metric names written by WriteSummary.
const (
	MetricFiles       = "alphadiv_files_total"
	MetricRows        = "alphadiv_rows_total"
	MetricCoerced     = "alphadiv_coerced_values_total"
	MetricQCFlags     = "alphadiv_qc_flags_total"
	MetricRunDuration = "alphadiv_run_duration_seconds"
	MetricLastRun     = "alphadiv_last_run_timestamp_seconds"
	MetricRunInfo     = "alphadiv_run_info"
)

const (
	labelStatus = "status"
	labelRule   = "rule"
	labelRunID  = "run_id"

	statusOK     = "ok"
	statusFailed = "failed"
)

// Families converts s into metric families, in a stable order.
func Families(s *batch.Summary) []*dto.MetricFamily {
	failed := len(s.Failures())

	flags := s.FlagsByRule()
	rules := make([]string, 0, len(flags))
	for r := range flags {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	flagMetrics := make([]*dto.Metric, 0, len(rules))
	for _, r := range rules {
		flagMetrics = append(flagMetrics, counter(float64(flags[r]), label(labelRule, r)))
	}

	mfs := []*dto.MetricFamily{
		family(MetricFiles, "Input files processed, by outcome.", dto.MetricType_COUNTER,
			counter(float64(s.OK()), label(labelStatus, statusOK)),
			counter(float64(failed), label(labelStatus, statusFailed)),
		),
		family(MetricRows, "Samples written to metrics tables.", dto.MetricType_COUNTER,
			counter(float64(s.Rows())),
		),
		family(MetricCoerced, "Abundance cells coerced to 0 because they were not clean non-negative numbers.", dto.MetricType_COUNTER,
			counter(float64(s.Coerced())),
		),
	}
	if len(flagMetrics) > 0 {
		mfs = append(mfs, family(MetricQCFlags, "Samples flagged by quality-control rules.", dto.MetricType_COUNTER, flagMetrics...))
	}
	mfs = append(mfs,
		family(MetricRunDuration, "Wall time of the batch run.", dto.MetricType_GAUGE,
			gauge(s.Duration().Seconds()),
		),
		family(MetricLastRun, "Unix time the batch run finished.", dto.MetricType_GAUGE,
			gauge(float64(s.Finished.UnixNano())/1e9),
		),
		family(MetricRunInfo, "Identifier of the batch run.", dto.MetricType_GAUGE,
			gauge(1, label(labelRunID, s.RunID)),
		),
	)
	return mfs
}

// WriteSummary encodes s as Prometheus text exposition.
func WriteSummary(w io.Writer, s *batch.Summary) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range Families(s) {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("export: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteSummaryFile writes s to path atomically.
func WriteSummaryFile(path string, s *batch.Summary) error {
	return table.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteSummary(w, s)
	})
}

func family(name, help string, typ dto.MetricType, ms ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   typ.Enum(),
		Metric: ms,
	}
}

func counter(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Counter: &dto.Counter{Value: proto.Float64(v)}}
}

func gauge(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: proto.Float64(v)}}
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}
