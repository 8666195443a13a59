package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/particles/sim"
)

func TestRenderer_CheckDraw(t *testing.T) {
	args := &Buffer{id: 7, kind: sim.BufferIndirectArgs, count: 5, stride: 4}
	live := &Buffer{id: 3, kind: sim.BufferStructured, count: 10, stride: sim.Vec3Stride}

	tests := []struct {
		name    string
		args    sim.Buffer
		bound   map[uint32]*Buffer
		wantErr error
	}{
		{"ready", args, map[uint32]*Buffer{0: live}, nil},
		{"structured args", live, nil, sim.ErrBufferSize},
		{"released args", &Buffer{kind: sim.BufferIndirectArgs}, nil, sim.ErrReleased},
		{"released storage", args, map[uint32]*Buffer{0: live, 1: {kind: sim.BufferStructured}}, sim.ErrReleased},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Renderer{buffers: tt.bound}
			ab, err := r.checkDraw(tt.args)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ab)
				return
			}
			require.NoError(t, err)
			assert.Same(t, args, ab)
		})
	}
}
