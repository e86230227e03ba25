package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalent(t *testing.T) {
	base := New(10, 1, 2, 7, nil)

	tests := []struct {
		name  string
		other Telegram
		want  bool
	}{
		{"identical", New(10, 1, 2, 7, nil), true},
		{"inside tolerance", New(10.2, 1, 2, 7, nil), true},
		{"inside tolerance below", New(9.8, 1, 2, 7, nil), true},
		{"at tolerance edge", New(10.25, 1, 2, 7, nil), false},
		{"outside tolerance", New(11, 1, 2, 7, nil), false},
		{"different sender", New(10, 3, 2, 7, nil), false},
		{"different receiver", New(10, 1, 3, 7, nil), false},
		{"different kind", New(10, 1, 2, 8, nil), false},
		{"payload ignored", New(10, 1, 2, 7, "extra"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equivalent(base, tt.other, DefaultTolerance))
			assert.Equal(t, tt.want, Equivalent(tt.other, base, DefaultTolerance), "equivalence must be symmetric")
		})
	}
}

func TestImmediate(t *testing.T) {
	assert.True(t, New(SendImmediately, 1, 2, 3, nil).Immediate())
	assert.False(t, New(0.5, 1, 2, 3, nil).Immediate())
}

func TestString(t *testing.T) {
	tg := New(1.5, SenderIrrelevant, 2, 3, nil)
	assert.Equal(t, "time=1.5 sender=-1 receiver=2 msg=3", tg.String())
}
