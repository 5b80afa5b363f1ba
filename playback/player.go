// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"sync"

	"github.com/ik5/granulator/audio"
	"github.com/ik5/granulator/grain"
)

// Channels is the output layout rendered by a Player.
const Channels = 2

type loopRange struct {
	lo, hi int
}

// Player re-synthesizes a mono buffer as granular stereo output.
//
// Render is meant to be called from the output device callback; every
// other method is a short mutation for the control plane. All of them
// share one mutex that is held for a single operation only.
type Player struct {
	mu sync.Mutex

	buffer []float32
	loop   *loopRange
	cursor int
	engine *grain.Engine

	sampleRate int
}

var _ audio.Source = (*Player)(nil)

// NewPlayer returns a silent player rendering at sampleRate with engine.
func NewPlayer(sampleRate int, engine *grain.Engine) *Player {
	return &Player{
		engine:     engine,
		sampleRate: sampleRate,
	}
}

// Render overwrites out, an interleaved stereo buffer, with the next block
// of granular output. A degenerate loop range renders silence and spawns
// nothing.
func (p *Player) Render(out []float32) {
	clear(out)

	p.mu.Lock()
	defer p.mu.Unlock()

	lo, hi, ok := resolveRange(p.loop, len(p.buffer))
	if !ok {
		return
	}

	p.cursor = WrapCursor(p.cursor, lo, hi, len(out)/Channels)

	p.engine.Retire()
	p.engine.SpawnIfNeeded(p.cursor, lo, hi, len(p.buffer))
	p.engine.Mix(out, p.buffer)
}

// SetBuffer installs buf as the source, resetting cursor, loop range and
// grains. buf must not be modified afterwards.
func (p *Player) SetBuffer(buf []float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buffer = buf
	p.loop = nil
	p.cursor = 0
	p.engine.Clear()
}

// ClearBuffer empties the source and drops all grains.
func (p *Player) ClearBuffer() {
	p.SetBuffer(nil)
}

// SetRange sets the loop range. A nil start means the buffer start and a
// nil end means the buffer end, both resolved against the current buffer.
func (p *Player) SetRange(start, end *int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := &loopRange{lo: 0, hi: len(p.buffer)}
	if start != nil {
		r.lo = *start
	}
	if end != nil {
		r.hi = *end
	}
	p.loop = r
}

// SetGrainSettings replaces the spawn settings of the engine.
func (p *Player) SetGrainSettings(s grain.Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.engine.SetSettings(s)
}

// GrainSettings returns the engine settings in effect.
func (p *Player) GrainSettings() grain.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.engine.Settings()
}

// Cursor returns the playback cursor.
func (p *Player) Cursor() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cursor
}

// Range returns the explicit loop range; ok is false while it is unset.
func (p *Player) Range() (lo, hi int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loop == nil {
		return 0, 0, false
	}
	return p.loop.lo, p.loop.hi, true
}

// Buffer returns the installed source buffer.
func (p *Player) Buffer() []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.buffer
}

// ActiveGrains returns the number of live grains.
func (p *Player) ActiveGrains() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.engine.Len()
}

// Grains returns a copy of the live grains.
func (p *Player) Grains() []grain.Grain {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.engine.Grains()
}

func (p *Player) SampleRate() int { return p.sampleRate }
func (p *Player) Channels() int   { return Channels }
func (p *Player) BufSize() int    { return 4096 }
func (p *Player) Close() error    { return nil }

// ReadSamples renders len(dst) interleaved samples. The stream never ends.
func (p *Player) ReadSamples(dst []float32) (int, error) {
	if len(dst)%Channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}

	p.Render(dst)
	return len(dst), nil
}
