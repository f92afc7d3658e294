package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Supports exact match or prefix match. Empty query matches all.
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	if len(queryNS) == 0 {
		matches = true
		return
	}
	if len(metricNS) < len(queryNS) {
		return
	}
	for i := 0; i < len(queryNS); i++ {
		if metricNS[i] != queryNS[i] {
			return
		}
	}
	matches = true
	return
}

// Returns all metrics matching given name and namespace prefix, oldest first.
// If name is empty, returns all names.
// If namespacePrefix is empty, returns all namespaces.
// Zero start/end disable that side of the time window.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	var timestamps []time.Time
	for ts := range registry.metrics {
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		timestamps = append(timestamps, ts)
	}

	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i].Before(timestamps[j])
	})

	for _, ts := range timestamps {
		nsMap := registry.metrics[ts]

		// Stable order within a slice
		namespaces := make([]string, 0, len(nsMap))
		for nsStr := range nsMap {
			namespaces = append(namespaces, nsStr)
		}
		sort.Strings(namespaces)

		for _, nsStr := range namespaces {
			if !matchesNamespace(strings.Split(nsStr, "/"), namespacePrefix) {
				continue
			}
			for metricName, metric := range nsMap[nsStr] {
				if name == "" || metricName == name {
					results = append(results, metric)
				}
			}
		}
	}
	return
}

// Numeric series for a single metric name (oldest first)
func (registry *Registry) Series(name string, namespacePrefix []string) (values []float64, err error) {
	for _, metric := range registry.Search(name, namespacePrefix, time.Time{}, time.Time{}) {
		var value float64
		value, err = toFloat(metric.Value.Raw)
		if err != nil {
			err = fmt.Errorf("metric %q in %s: %w", metric.Name, strings.Join(metric.Namespace, "/"), err)
			return
		}
		values = append(values, value)
	}
	return
}

func toFloat(raw any) (value float64, err error) {
	switch v := raw.(type) {
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint64:
		value = float64(v)
	case uint32:
		value = float64(v)
	case float64:
		value = v
	case float32:
		value = float64(v)
	default:
		err = fmt.Errorf("non-numeric value of type %T", raw)
	}
	return
}
