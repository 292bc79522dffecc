package emit

import (
	"errors"

	"kartvid/internal/kv"
)

type multi []kv.Emitter

// Multi sends every state to each non-nil emitter in order. All emitters
// run even when one fails; the errors are joined.
func Multi(emitters ...kv.Emitter) kv.Emitter {
	out := make(multi, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multi) Emit(source string, frame int, timeMs int64, cur kv.Screen, baseline *kv.Screen) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(source, frame, timeMs, cur, baseline); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
