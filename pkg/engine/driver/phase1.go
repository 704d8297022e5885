package driver

import (
	"runtime"
	"sync"

	"github.com/jwedi/logium/internal/obslog"
	"github.com/jwedi/logium/pkg/engine/lineiter"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/engine/rules"
)

// phase1 reads and rule-evaluates every source concurrently — one
// goroutine per source, joined with a WaitGroup, same fan-out shape as
// the teacher's multi_search_result.go, with a semaphore letting at most
// GOMAXPROCS sources run at once — and returns each source's lines in
// file order (already chronological per source).
func phase1(sources []model.Source, ctx *runContext) ([][]rules.ProcessedLine, error) {
	results := make([][]rules.ProcessedLine, len(sources))
	errs := make([]error, len(sources))

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	wg.Add(len(sources))
	for i, source := range sources {
		go func(i int, source model.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			obslog.Debug("phase1: starting source %s", source.Name)
			processed, err := processSource(source, ctx)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = processed
			obslog.Debug("phase1: finished source %s (%d lines)", source.Name, len(processed))
		}(i, source)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func processSource(source model.Source, ctx *runContext) ([]rules.ProcessedLine, error) {
	template, tsTemplate, ruleIDs, err := ctx.resolveSource(source)
	if err != nil {
		return nil, err
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
		return nil, err
	}
	defer it.Close()

	// Step 1: sequential I/O — read every line up front.
	var lines []model.LogLine
	for {
		line, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		lines = append(lines, line)
	}

	isJSON := template.JSONTimestampField != ""

	// Step 2: rule evaluation per line.
	processed := make([]rules.ProcessedLine, len(lines))
	for i, line := range lines {
		var matches []rules.RuleMatchResult
		for _, ruleID := range ruleIDs {
			logRule, ok := ctx.ruleByID[ruleID]
			if !ok {
				continue
			}
			compiled, ok := ctx.compiledByID[ruleID]
			if !ok {
				continue
			}
			if extracted, matched := rules.Evaluate(logRule, line.Content, compiled); matched {
				matches = append(matches, rules.RuleMatchResult{RuleID: ruleID, Extracted: extracted})
			}
		}

		var jsonFields map[string]model.StateValue
		if isJSON && line.JSONFields != nil {
			jsonFields = make(map[string]model.StateValue, len(line.JSONFields))
			for k, v := range line.JSONFields {
				if sv, ok := rules.JSONValueToStateValue(v); ok {
					jsonFields[k] = sv
				}
			}
			line.JSONFields = nil
		}

		processed[i] = rules.ProcessedLine{
			Line:        line,
			RuleMatches: matches,
			JSONFields:  jsonFields,
		}
	}

	return processed, nil
}
