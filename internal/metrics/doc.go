// Package metrics turns the ordered per-task results of a run into summary statistics.
//
// Every task of a run produces exactly one [TestResult]. A real HTTP exchange carries
// the server's status code and decoded body; a local failure carries a synthetic 400
// status, a single "error" entry in the body and the failure category.
//
// # Aggregation
//
// [Aggregate] is a pure function over the result list:
//
//	stats, err := metrics.Aggregate(results)
//	if errors.Is(err, metrics.ErrEmptyResultSet) {
//		// nothing ran
//	}
//
// Counts and the best, worst and average operate times follow the historical report
// format exactly: a task is OK only when its status is 200, the average uses truncating
// integer division and the OK percentage is rounded half up to two decimals.
// Percentiles come from an HDR histogram of the operate times.
//
// # Exposition
//
// [WriteTextfile] renders the statistics in the Prometheus text format so a node
// exporter textfile collector can pick them up.
package metrics
