package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "apiperf"

// Registry returns a Prometheus registry holding the gauges that describe stats.
func Registry(stats Stats, runID, target string) (*prometheus.Registry, error) {
	labels := prometheus.Labels{"run_id": runID, "target": target}

	requests := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "requests",
		Help:        "Tasks executed in the run, by outcome.",
		ConstLabels: labels,
	}, []string{"outcome"})
	operateTime := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "operate_time_milliseconds",
		Help:        "Operate time summary of the run.",
		ConstLabels: labels,
	}, []string{"stat"})
	statusCodes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "status_codes",
		Help:        "Tasks per response status code.",
		ConstLabels: labels,
	}, []string{"code"})
	okPercent := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "ok_percent",
		Help:        "Share of tasks answered with status 200.",
		ConstLabels: labels,
	})

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{requests, operateTime, statusCodes, okPercent} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	requests.WithLabelValues("total").Set(float64(stats.TotalCount))
	requests.WithLabelValues("ok").Set(float64(stats.OKCount))
	requests.WithLabelValues("ng").Set(float64(stats.NGCount))

	operateTime.WithLabelValues("avg").Set(float64(stats.AverageOperateTimeMs))
	operateTime.WithLabelValues("best").Set(float64(stats.BestOperateTimeMs))
	operateTime.WithLabelValues("worst").Set(float64(stats.WorstOperateTimeMs))
	operateTime.WithLabelValues("p50").Set(float64(stats.P50OperateTimeMs))
	operateTime.WithLabelValues("p90").Set(float64(stats.P90OperateTimeMs))
	operateTime.WithLabelValues("p99").Set(float64(stats.P99OperateTimeMs))

	for code, count := range stats.StatusCodes {
		statusCodes.WithLabelValues(strconv.Itoa(code)).Set(float64(count))
	}
	okPercent.Set(stats.OKPercent)

	return reg, nil
}

// WriteTextfile writes stats to path in the Prometheus text exposition format.
func WriteTextfile(path string, stats Stats, runID, target string) error {
	reg, err := Registry(stats, runID, target)
	if err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
