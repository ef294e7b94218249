package keyframe

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// JSONWriter writes one JSON object per line.
type JSONWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

var _ Writer = (*JSONWriter)(nil)

func NewJSONWriter(w io.Writer) *JSONWriter {
	bw := bufio.NewWriter(w)
	return &JSONWriter{bw: bw, enc: json.NewEncoder(bw)}
}

func (j *JSONWriter) Spawned(info simulation.AgentInfo) error {
	return j.enc.Encode(spawnRecord(info))
}

func (j *JSONWriter) Emit(p simulation.Pose) error {
	rec, err := keyRecord(p)
	if err != nil {
		return err
	}
	return j.enc.Encode(rec)
}

func (j *JSONWriter) Flush() error {
	return j.bw.Flush()
}

// ReadJSON decodes a JSON lines stream.
func ReadJSON(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	var records []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
}
