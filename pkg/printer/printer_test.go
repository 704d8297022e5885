package printer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwedi/logium/pkg/engine/model"
)

func TestPrintStateChangeNoColorOnBuffer(t *testing.T) {
	var buf bytes.Buffer
	InitColorState(nil, &buf)

	old := model.IntegerValue(200)
	newVal := model.IntegerValue(500)
	PrintStateChange(&buf, model.StateChange{
		Timestamp:  time.Date(2024, 1, 15, 9, 0, 2, 0, time.UTC),
		SourceName: "web",
		StateKey:   "status",
		OldValue:   &old,
		NewValue:   &newVal,
		RuleID:     1,
	})

	out := buf.String()
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "200")
	assert.Contains(t, out, "500")
	assert.Contains(t, out, "rule 1")
}

func TestPrintStateChangeClearedShowsPlaceholder(t *testing.T) {
	var buf bytes.Buffer
	InitColorState(nil, &buf)

	old := model.StringValue("active")
	PrintStateChange(&buf, model.StateChange{
		SourceName: "web",
		StateKey:   "status",
		OldValue:   &old,
		NewValue:   nil,
		RuleID:     0,
	})

	out := buf.String()
	assert.Contains(t, out, "<cleared>")
	assert.Contains(t, out, "(json)")
}

func TestPrintRuleMatchIncludesExtractedState(t *testing.T) {
	var buf bytes.Buffer
	InitColorState(nil, &buf)

	PrintRuleMatch(&buf, model.RuleMatch{
		RuleID:   1,
		SourceID: 1,
		LogLine:  model.LogLine{Content: "status=500"},
		ExtractedState: map[string]model.StateValue{
			"status": model.IntegerValue(500),
		},
	})

	out := buf.String()
	assert.Contains(t, out, "status=500")
	assert.Contains(t, out, "500")
}

func TestPrintClusterResultListsCounts(t *testing.T) {
	var buf bytes.Buffer
	InitColorState(nil, &buf)

	PrintClusterResult(&buf, model.ClusterResult{
		TotalLines: 4,
		Clusters: []model.LogCluster{
			{Template: "<*> path=/checkout <*>", Count: 3},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "4 lines")
	assert.Contains(t, out, "x3")
	assert.Contains(t, out, "path=/checkout")
}

func TestInitColorStateRespectsExplicitOverride(t *testing.T) {
	var buf bytes.Buffer
	on := true
	InitColorState(&on, &buf)
	assert.True(t, IsColorEnabled())

	off := false
	InitColorState(&off, &buf)
	assert.False(t, IsColorEnabled())
}

func TestInitColorStateRespectsNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	InitColorState(nil, &buf)
	assert.False(t, IsColorEnabled())
}
