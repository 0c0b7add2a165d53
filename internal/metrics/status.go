package metrics

import "sort"

// StatusBucket is the number of tasks that ended with one status code.
type StatusBucket struct {
	Code  int
	Count int
}

// FlattenStatusCodes converts a status->count map into rows sorted by descending
// count, then by code.
func FlattenStatusCodes(codes map[int]int) []StatusBucket {
	if len(codes) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0, len(codes))
	for code, count := range codes {
		rows = append(rows, StatusBucket{Code: code, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Code < rows[j].Code
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
