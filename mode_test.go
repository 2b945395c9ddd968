package hooter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_IsValid(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeAuto, true},
		{ModeAsIs, true},
		{ModeSync, true},
		{ModeAsync, true},
		{ModeNone, false},
		{Mode("Sync"), false},  // case-sensitive
		{Mode("ASYNC"), false}, // case-sensitive
		{Mode("asis"), false},
		{Mode("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.IsValid())
		})
	}
}

func TestModes_ExactlyFour(t *testing.T) {
	assert.Len(t, Modes, 4)
	for _, m := range Modes {
		assert.True(t, m.IsValid())
	}
}
