package aggregate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is one named value of a Record.
type Field struct {
	Key   string
	Value interface{}
}

// Record is the single output of one job. Fields keep a fixed order across
// a run so tabular sinks can derive headers from the first record.
type Record struct {
	Name    string
	Command []string
	Fields  []Field
	Raw     RawLogs
}

// RawLogs keeps the unparsed program output for traceability.
type RawLogs struct {
	WorkloadStdout string `json:"workload_stdout"`
	WorkloadStderr string `json:"workload_stderr"`
	SamplerStdout  string `json:"sampler_stdout"`
	SamplerStderr  string `json:"sampler_stderr"`
}

func (r *Record) add(key string, value interface{}) {
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
}

// Keys returns the field names in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (interface{}, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value of key formatted for text and tabular output.
func (r *Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// FormatValue renders a field value without exponent notation.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Values returns the formatted values of keys, empty for unknown keys.
func (r *Record) Values(keys []string) []string {
	row := make([]string, len(keys))
	for i, k := range keys {
		row[i] = r.String(k)
	}
	return row
}

// MarshalJSON writes the fields in order followed by the raw logs.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, f.Key, f.Value); err != nil {
			return nil, err
		}
	}
	if len(r.Fields) > 0 {
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, "raw", r.Raw); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value interface{}) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
