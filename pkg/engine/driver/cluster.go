package driver

import (
	"time"

	"github.com/jwedi/logium/pkg/engine/cluster"
	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/lineiter"
	"github.com/jwedi/logium/pkg/engine/merge"
	"github.com/jwedi/logium/pkg/engine/model"
)

func logLineTime(l model.LogLine) time.Time { return l.Timestamp }

// Cluster builds a chronological merged stream over sources (lineiter.Iterator
// values fed straight into a merge.Merger, with no rule evaluation) and
// buckets it by structural template via pkg/engine/cluster.
func Cluster(
	sources []model.Source,
	templates []model.SourceTemplate,
	tsTemplates []model.TimestampTemplate,
	timeRange model.TimeRange,
) (model.ClusterResult, error) {
	templateByID := make(map[uint64]model.SourceTemplate, len(templates))
	for _, t := range templates {
		templateByID[t.ID] = t
	}
	tsTemplateByID := make(map[uint64]model.TimestampTemplate, len(tsTemplates))
	for _, t := range tsTemplates {
		tsTemplateByID[t.ID] = t
	}

	iterSources := make([]merge.Source[model.LogLine], 0, len(sources))
	var openIterators []*lineiter.Iterator
	defer func() {
		for _, it := range openIterators {
			it.Close()
		}
	}()

	for _, source := range sources {
		template, ok := templateByID[source.TemplateID]
		if !ok {
			return model.ClusterResult{}, errkind.New(errkind.ParseError,
				"no template found for template_id %d", source.TemplateID)
		}
		tsTemplate, ok := tsTemplateByID[template.TimestampTemplateID]
		if !ok {
			return model.ClusterResult{}, errkind.New(errkind.ParseError,
				"no timestamp template found for timestamp_template_id %d", template.TimestampTemplateID)
		}

		it, err := lineiter.New(lineiter.Options{
			SourceID:           source.ID,
			FilePath:           source.FilePath,
			TimestampFormat:    tsTemplate.Format,
			ExtractionRegex:    tsTemplate.ExtractionRegex,
			DefaultYear:        tsTemplate.DefaultYear,
			HasDefaultYear:     tsTemplate.HasDefaultYear,
			ContentRegex:       template.ContentRegex,
			ContinuationRegex:  template.ContinuationRegex,
			JSONTimestampField: template.JSONTimestampField,
		})
		if err != nil {
			return model.ClusterResult{}, err
		}
		openIterators = append(openIterators, it)
		iterSources = append(iterSources, it)
	}

	merger, err := merge.NewMerger(iterSources, logLineTime)
	if err != nil {
		return model.ClusterResult{}, err
	}
	return cluster.ClusterLines(merger, timeRange)
}
