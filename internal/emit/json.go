package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"kartvid/internal/kv"
)

// JSONEmitter writes one Record per line.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONEmitter writes JSON lines to w.
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

// WriteHeader writes the video header line. It must precede the first record.
func (e *JSONEmitter) WriteHeader(h Header) error {
	return e.write(h)
}

// Emit implements kv.Emitter.
func (e *JSONEmitter) Emit(source string, frame int, timeMs int64, cur kv.Screen, baseline *kv.Screen) error {
	return e.write(NewRecord(source, frame, timeMs, cur, baseline))
}

func (e *JSONEmitter) write(v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(v); err != nil {
		return fmt.Errorf("write json record: %w", err)
	}
	return nil
}
