// Package lineiter lazily yields model.LogLine entries from a single
// source file: it joins continuation lines, extracts timestamps, and
// optionally decodes JSON-mode entries. Grounded on the head-line +
// continuation-join shape of the teacher's pkg/log/reader.Reader, with
// exact field precedence (content_regex vs extraction_regex vs JSON mode)
// ported from the original engine's LogLineIterator.
package lineiter

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/engine/tsparse"
)

const readBufferSize = 64 * 1024

// Options configures a single source's iterator. All regex fields are
// optional; the zero value (empty string) means "unset".
type Options struct {
	SourceID           uint64
	FilePath           string
	TimestampFormat    string
	ExtractionRegex    string
	DefaultYear        int
	HasDefaultYear     bool
	ContentRegex       string // group 1 on the first line becomes Content; falls through to raw text if the regex does not match
	ContinuationRegex  string
	JSONTimestampField string
}

// Iterator lazily reads LogLine entries from one source file.
type Iterator struct {
	reader   *bufio.Reader
	file     *os.File
	sourceID uint64
	format   string

	extractionRegex   *regexp.Regexp
	contentRegex      *regexp.Regexp
	continuationRegex *regexp.Regexp
	jsonField         string

	defaultYear    int
	hasDefaultYear bool

	pending *string
}

// New opens the source file and compiles its regexes. Callers must call
// Close when done.
func New(opts Options) (*Iterator, error) {
	f, err := os.Open(opts.FilePath)
	if err != nil {
		return nil, errkind.New(errkind.FileNotFound, "%s", opts.FilePath)
	}

	contentRe, err := compileOptional(opts.ContentRegex)
	if err != nil {
		f.Close()
		return nil, err
	}
	extractionRe, err := compileOptional(opts.ExtractionRegex)
	if err != nil {
		f.Close()
		return nil, err
	}
	continuationRe, err := compileOptional(opts.ContinuationRegex)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Iterator{
		reader:            bufio.NewReaderSize(f, readBufferSize),
		file:              f,
		sourceID:          opts.SourceID,
		format:            opts.TimestampFormat,
		extractionRegex:   extractionRe,
		contentRegex:      contentRe,
		continuationRegex: continuationRe,
		jsonField:         opts.JSONTimestampField,
		defaultYear:       opts.DefaultYear,
		hasDefaultYear:    opts.HasDefaultYear,
	}, nil
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errkind.New(errkind.InvalidRegex, "%s", err.Error())
	}
	return re, nil
}

// Close releases the underlying file handle.
func (it *Iterator) Close() error {
	return it.file.Close()
}

func (it *Iterator) readLine() (string, bool, error) {
	line, err := it.reader.ReadString('\n')
	if err != nil {
		if line == "" {
			if err == io.EOF {
				return "", false, nil
			}
			return "", false, errkind.New(errkind.ParseError, "%s", err.Error())
		}
		if err != io.EOF {
			return "", false, errkind.New(errkind.ParseError, "%s", err.Error())
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// Next returns the next LogLine. ok is false with a nil error at EOF.
func (it *Iterator) Next() (model.LogLine, bool, error) {
	var head string
	if it.pending != nil {
		head = *it.pending
		it.pending = nil
	} else {
		line, ok, err := it.readLine()
		if err != nil {
			return model.LogLine{}, false, err
		}
		if !ok {
			return model.LogLine{}, false, nil
		}
		head = line
	}

	mergedRaw := head
	if it.continuationRegex != nil {
		var b strings.Builder
		b.WriteString(head)
		for {
			line, ok, err := it.readLine()
			if err != nil {
				return model.LogLine{}, false, err
			}
			if !ok {
				break
			}
			if it.continuationRegex.MatchString(line) {
				b.WriteByte('\n')
				b.WriteString(line)
			} else {
				it.pending = &line
				break
			}
		}
		mergedRaw = b.String()
	}

	if it.jsonField != "" {
		return it.nextJSON(mergedRaw)
	}
	return it.nextPlain(mergedRaw)
}

func (it *Iterator) nextJSON(mergedRaw string) (model.LogLine, bool, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(mergedRaw), &fields); err != nil {
		return model.LogLine{}, false, errkind.New(errkind.ParseError, "failed to parse JSON: %s", err.Error())
	}

	raw, ok := fields[it.jsonField].(string)
	if !ok {
		return model.LogLine{}, false, errkind.New(errkind.ParseError,
			"JSON field '%s' not found or not a string", it.jsonField)
	}

	ts, err := tsparse.Parse(raw, it.format, it.defaultYear, it.hasDefaultYear)
	if err != nil {
		return model.LogLine{}, false, errkind.New(errkind.InvalidTimestampFormat,
			"failed to parse timestamp from '%s' with format '%s': %s", raw, it.format, err.Error())
	}

	return model.LogLine{
		Timestamp:  ts,
		SourceID:   it.sourceID,
		Raw:        mergedRaw,
		Content:    mergedRaw,
		JSONFields: fields,
	}, true, nil
}

func (it *Iterator) nextPlain(mergedRaw string) (model.LogLine, bool, error) {
	firstLine := mergedRaw
	rest := ""
	hasRest := false
	if idx := strings.IndexByte(mergedRaw, '\n'); idx >= 0 {
		firstLine = mergedRaw[:idx]
		rest = mergedRaw[idx+1:]
		hasRest = true
	}

	content := mergedRaw
	if it.contentRegex != nil {
		if m := it.contentRegex.FindStringSubmatch(firstLine); m != nil {
			head := firstLine
			if len(m) > 1 && m[1] != "" {
				head = m[1]
			}
			if hasRest {
				content = head + "\n" + rest
			} else {
				content = head
			}
		}
	}

	tsInput := firstLine
	if it.extractionRegex != nil {
		if m := it.extractionRegex.FindStringSubmatch(firstLine); m != nil {
			if len(m) > 1 {
				tsInput = m[1]
			}
		}
	}

	ts, err := tsparse.Parse(tsInput, it.format, it.defaultYear, it.hasDefaultYear)
	if err != nil {
		return model.LogLine{}, false, errkind.New(errkind.InvalidTimestampFormat,
			"failed to parse timestamp from '%s' with format '%s': %s", firstLine, it.format, err.Error())
	}

	return model.LogLine{
		Timestamp: ts,
		SourceID:  it.sourceID,
		Raw:       mergedRaw,
		Content:   content,
	}, true, nil
}
