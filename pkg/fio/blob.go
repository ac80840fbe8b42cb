package fio

import (
	"encoding/json"

	"github.com/kastenhq/iotester/pkg/common"
)

// resultKey identifies the top-level object that carries a fio result.
const resultKey = "jobs"

// ExtractBlob returns the single top-level {...} span of output that decodes
// to a JSON object with a "jobs" member. Braces inside JSON strings do not
// count towards depth. Spans that are not such an object (log noise like
// "{foo}") are ignored, and a stray unclosed '{' is skipped by rescanning
// after it. Zero or several result objects are a ParseError.
func ExtractBlob(output string) (string, error) {
	var found []string
	unbalanced := false
	for from := 0; from < len(output); {
		spans, open := scanSpans(output, from)
		for _, span := range spans {
			if isResult(span) {
				found = append(found, span)
			}
		}
		if open < 0 {
			break
		}
		unbalanced = true
		from = open + 1
	}

	switch {
	case len(found) == 1:
		return found[0], nil
	case len(found) > 1:
		return "", common.ParseErrorf("found %d embedded fio results, expected one", len(found))
	case unbalanced:
		return "", common.ParseErrorf("fio output has an unterminated result object")
	default:
		return "", common.ParseErrorf("no fio result found in output")
	}
}

// scanSpans returns the balanced top-level spans starting at or after from,
// and the offset of a span left open at the end of input (-1 if none).
func scanSpans(output string, from int) ([]string, int) {
	var spans []string
	start, depth := -1, 0
	inString, escaped := false, false

	for i := from; i < len(output); i++ {
		ch := output[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, output[start:i+1])
				start = -1
			}
		}
	}
	if depth > 0 {
		return spans, start
	}
	return spans, -1
}

func isResult(span string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return false
	}
	_, ok := obj[resultKey]
	return ok
}
