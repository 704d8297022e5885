// Package cluster groups structurally similar log lines by masking
// variable tokens (Drain-inspired tokenization) and bucketing by the
// resulting signature. Grounded on tokenize/cluster_logs in the original
// engine; the regex family and ordering are preserved exactly, with the
// UUID class validated via google/uuid.Parse instead of a hand-rolled
// regex (a dependency the teacher's go.mod already carries).
package cluster

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jwedi/logium/pkg/engine/model"
)

const placeholder = "<*>"

var variablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`),                   // ISO timestamp
	regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(:\d+)?$`),               // IPv4[:port]
	regexp.MustCompile(`^0x[0-9a-fA-F]+$|^[0-9a-fA-F]{8,}$`),                        // hex string
	regexp.MustCompile(`^/[^\s]+/[^\s]+$`),                                         // unix path
	regexp.MustCompile(`^"[^"]*"$|^'[^']*'$`),                                      // quoted string
	regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}([,.]\d+)?$`),                          // HH:MM:SS[.fff]
	regexp.MustCompile(`^\d+\.\d+$`),                                               // decimal
	regexp.MustCompile(`^\d+$`),                                                    // integer
	regexp.MustCompile(`\d`),                                                       // catch-all: any digit
}

// isUUID reports whether token is an 8-4-4-4-12 hex UUID, the class the
// original engine matches with a dedicated regex; here validated with the
// ecosystem's own UUID parser instead.
func isUUID(token string) bool {
	if len(token) != 36 {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}

// Tokenize replaces every whitespace-delimited variable-looking token in
// line with a placeholder, in the same rule order as the original engine:
// UUID first, then the regex family, falling through to the raw token when
// nothing matches.
func Tokenize(line string) string {
	fields := strings.Fields(line)
	for i, tok := range fields {
		if isUUID(tok) {
			fields[i] = placeholder
			continue
		}
		for _, re := range variablePatterns {
			if re.MatchString(tok) {
				fields[i] = placeholder
				break
			}
		}
	}
	return strings.Join(fields, " ")
}

type bucket struct {
	count     uint64
	sourceIDs map[uint64]struct{}
	samples   []string
}

// Source is the minimal line-supplying interface ClusterLines consumes —
// satisfied directly by a merge.Merger[model.LogLine].
type Source interface {
	Next() (model.LogLine, bool, error)
}

// ClusterLines drains stream, bucketing lines by tokenized signature
// within timeRange, dropping singleton buckets, and returning the rest
// sorted by descending count. Up to 3 sample raw lines are kept per
// bucket.
func ClusterLines(stream Source, timeRange model.TimeRange) (model.ClusterResult, error) {
	buckets := make(map[string]*bucket)
	var total uint64

	for {
		line, ok, err := stream.Next()
		if err != nil {
			return model.ClusterResult{}, err
		}
		if !ok {
			break
		}

		if timeRange.HasStart && line.Timestamp.Before(timeRange.Start) {
			continue
		}
		if timeRange.HasEnd && line.Timestamp.After(timeRange.End) {
			break
		}

		total++
		sig := Tokenize(line.Content)
		b, exists := buckets[sig]
		if !exists {
			b = &bucket{sourceIDs: make(map[uint64]struct{})}
			buckets[sig] = b
		}
		b.count++
		b.sourceIDs[line.SourceID] = struct{}{}
		if len(b.samples) < 3 {
			b.samples = append(b.samples, line.Raw)
		}
	}

	clusters := make([]model.LogCluster, 0, len(buckets))
	for sig, b := range buckets {
		if b.count <= 1 {
			continue
		}
		ids := make([]uint64, 0, len(b.sourceIDs))
		for id := range b.sourceIDs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		clusters = append(clusters, model.LogCluster{
			Template:    sig,
			Count:       b.count,
			SourceIDs:   ids,
			SampleLines: b.samples,
		})
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Count > clusters[j].Count })

	return model.ClusterResult{Clusters: clusters, TotalLines: total}, nil
}
