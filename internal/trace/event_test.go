package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.Record(Event{Seq: 1, Kind: KindTick})
	r.Record(Event{Seq: 2, Kind: KindTransition})
	r.Record(Event{Seq: 3, Kind: KindTick})

	assert.Len(t, r.Events(), 3)
	ticks := r.Filter(KindTick)
	assert.Len(t, ticks, 2)
	assert.Equal(t, int64(3), ticks[1].Seq)
	assert.Empty(t, r.Filter(KindDelivered))
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	sink := Multi(a, nil, b)
	sink.Record(Event{Seq: 1})

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestMulti_Degenerate(t *testing.T) {
	assert.NotPanics(t, func() { Multi().Record(Event{}) })

	only := NewRecorder()
	assert.Same(t, only, Multi(nil, only))
}
