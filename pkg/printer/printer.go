package printer

import (
	"fmt"
	"io"
	"sort"

	"github.com/TylerBrock/colorjson"

	"github.com/jwedi/logium/pkg/engine/model"
)

const timeLayout = "2006-01-02 15:04:05"

// PrintStateChange writes one StateChange as a single colorized line,
// e.g. "[2024-03-02 09:00:02] web status: 200 -> 500 (rule 1)".
func PrintStateChange(w io.Writer, c model.StateChange) {
	old := "<none>"
	if c.OldValue != nil {
		old = c.OldValue.String()
	}
	newVal := "<cleared>"
	if c.NewValue != nil {
		newVal = c.NewValue.String()
	}

	ruleSuffix := ""
	if c.RuleID != 0 {
		ruleSuffix = fmt.Sprintf(" (rule %d)", c.RuleID)
	} else {
		ruleSuffix = " (json)"
	}

	fmt.Fprintf(w, "[%s] %s %s: %s %s %s%s\n",
		colorize(dimColor, c.Timestamp.Format(timeLayout)),
		colorize(sourceColor, c.SourceName),
		c.StateKey,
		colorize(removedColor, old),
		colorize(dimColor, "->"),
		colorize(addedColor, newVal),
		ruleSuffix,
	)
}

// PrintRuleMatch writes one RuleMatch's rule id, timestamp, source, and
// line content, with its extracted state as colorized JSON beneath it.
func PrintRuleMatch(w io.Writer, m model.RuleMatch) {
	fmt.Fprintf(w, "%s [%s] %s: %s\n",
		colorize(ruleColor, fmt.Sprintf("rule %d", m.RuleID)),
		colorize(dimColor, m.LogLine.Timestamp.Format(timeLayout)),
		colorize(sourceColor, fmt.Sprintf("source %d", m.SourceID)),
		m.LogLine.Content,
	)
	if len(m.ExtractedState) > 0 {
		fmt.Fprint(w, renderStateJSON(m.ExtractedState))
	}
}

// PrintPatternMatch writes one PatternMatch's id, timestamp, and a
// per-source state snapshot.
func PrintPatternMatch(w io.Writer, m model.PatternMatch) {
	fmt.Fprintf(w, "%s [%s]\n",
		colorize(patternColor, fmt.Sprintf("pattern %d fired", m.PatternID)),
		colorize(dimColor, m.Timestamp.Format(timeLayout)),
	)
	sourceNames := make([]string, 0, len(m.StateSnapshot))
	for name := range m.StateSnapshot {
		sourceNames = append(sourceNames, name)
	}
	sort.Strings(sourceNames)
	for _, name := range sourceNames {
		fmt.Fprintf(w, "  %s:\n", colorize(sourceColor, name))
		flat := make(map[string]model.StateValue, len(m.StateSnapshot[name]))
		for k, tv := range m.StateSnapshot[name] {
			flat[k] = tv.Value
		}
		fmt.Fprint(w, indent(renderStateJSON(flat), "    "))
	}
}

// PrintClusterResult writes a cluster summary: total lines, then one line
// per cluster with its count and template.
func PrintClusterResult(w io.Writer, result model.ClusterResult) {
	fmt.Fprintf(w, "%d lines, %d clusters\n", result.TotalLines, len(result.Clusters))
	for _, c := range result.Clusters {
		fmt.Fprintf(w, "  %s %s\n",
			colorize(ruleColor, fmt.Sprintf("x%d", c.Count)),
			c.Template,
		)
	}
}

// renderStateJSON colorizes a map[string]model.StateValue via
// TylerBrock/colorjson, the same library the teacher uses for its own
// extracted-field JSON rendering.
func renderStateJSON(fields map[string]model.StateValue) string {
	plain := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch v.Kind {
		case model.KindInteger:
			plain[k] = v.Int
		case model.KindFloat:
			plain[k] = v.Flt
		case model.KindBool:
			plain[k] = v.Bln
		default:
			plain[k] = v.Str
		}
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !IsColorEnabled()
	b, err := f.Marshal(plain)
	if err != nil {
		return ""
	}
	return string(b) + "\n"
}

func indent(s, prefix string) string {
	out := ""
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out += prefix + s[start:i+1]
			start = i + 1
		}
	}
	if start < len(s) {
		out += prefix + s[start:]
	}
	return out
}
