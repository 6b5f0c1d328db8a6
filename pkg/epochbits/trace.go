package epochbits

import "fmt"

// Epochs used by the reference trace: a participant joins at TraceStart,
// goes offline at TraceOffline, comes back at TraceResume, and history is
// later rewritten from TraceOverwrite.
const (
	TraceStart     = 5
	TraceOffline   = 10
	TraceResume    = 15
	TraceOverwrite = 7
)

// Step is one labelled value in a trace. Steps with the same Section
// belong to one phase of the walk-through.
type Step struct {
	Section int
	Label   string
	Value   Bitfield
}

// Trace replays the activation walk-through at the given width. Each
// phase computes the same value twice, once from raw mask arithmetic and
// once through ActivateFrom/DeactivateFrom, so the two can be compared.
func Trace(width int) ([]Step, error) {
	var t tracer

	empty := t.must(Empty(width))
	full := t.must(Full(width))
	t.add(0, "EMPTY ARRAY", empty)
	t.add(0, "FULL ARRAY", full)

	offset := t.must(Bitmask(width, TraceStart))
	t.add(1, fmt.Sprintf("FIRST %d OFFSET", TraceStart), offset)
	claims := t.must(offset.Xor(full))
	t.add(1, fmt.Sprintf("IGNORING FIRST %d CLAIMS", TraceStart), claims)
	acFrom := t.must(empty.ActivateFrom(TraceStart))
	t.add(1, fmt.Sprintf("== ACTIVATE FROM EPOCH %d", TraceStart), acFrom)

	mask := t.must(Bitmask(width, TraceOffline))
	claims = t.must(mask.And(claims))
	t.add(2, fmt.Sprintf("OFFLINE FROM EPOCH %d", TraceOffline), claims)
	deFrom := t.must(acFrom.DeactivateFrom(TraceOffline))
	t.add(2, fmt.Sprintf("== DEACTIVATE FROM EPOCH %d", TraceOffline), deFrom)
	t.add(2, fmt.Sprintf("REPEAT DEACTIVATE EPOCH %d", TraceOffline), t.must(deFrom.DeactivateFrom(TraceOffline)))

	turnOn := t.must(Bitmask(width, TraceResume))
	resume := t.must(turnOn.Xor(full))
	t.add(3, "RESUME XOR", resume)
	claims = t.must(resume.Or(claims))
	t.add(3, fmt.Sprintf("RESUME FROM EPOCH %d", TraceResume), claims)
	acResume := t.must(deFrom.ActivateFrom(TraceResume))
	t.add(3, fmt.Sprintf("== ACTIVATE AGAIN EPOCH %d", TraceResume), acResume)
	t.add(3, fmt.Sprintf("REPEAT ACTIVATE EPOCH %d", TraceResume), t.must(acResume.ActivateFrom(TraceResume)))

	t.add(4, fmt.Sprintf("OVERWRITE EPOCH ACTIVE %d", TraceOverwrite), t.must(acResume.ActivateFrom(TraceOverwrite)))
	t.add(4, fmt.Sprintf("OVERWRITE EPOCH DEACTIVE %d", TraceOverwrite), t.must(acResume.DeactivateFrom(TraceOverwrite)))

	if t.err != nil {
		return nil, fmt.Errorf("trace at width %d: %w", width, t.err)
	}
	return t.steps, nil
}

// tracer keeps the first error and turns later steps into no-ops.
type tracer struct {
	steps []Step
	err   error
}

func (t *tracer) must(b Bitfield, err error) Bitfield {
	if t.err == nil && err != nil {
		t.err = err
	}
	return b
}

func (t *tracer) add(section int, label string, b Bitfield) {
	if t.err != nil {
		return
	}
	t.steps = append(t.steps, Step{Section: section, Label: label, Value: b})
}
