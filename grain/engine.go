// SPDX-License-Identifier: EPL-2.0

package grain

import (
	"math/rand/v2"

	"github.com/ik5/granulator/utils"
)

const initialCapacity = 256

// Engine owns the active grains and the settings used to spawn new ones.
//
// Engine is not safe for concurrent use; playback.Player serializes
// access to it.
type Engine struct {
	grains   []Grain
	settings Settings
	rng      *rand.Rand
}

// NewEngine returns an engine whose random draws are seeded with seed.
func NewEngine(settings Settings, seed uint64) *Engine {
	settings = settings.Normalize()
	return &Engine{
		grains:   make([]Grain, 0, max(initialCapacity, settings.NumGrains)),
		settings: settings,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Settings returns the current spawn settings.
func (e *Engine) Settings() Settings { return e.settings }

// SetSettings replaces the spawn settings. Live grains keep their shape.
func (e *Engine) SetSettings(s Settings) {
	e.settings = s.Normalize()
}

// Len is the number of live grains.
func (e *Engine) Len() int { return len(e.grains) }

// Grains returns a copy of the live grains in insertion order.
func (e *Engine) Grains() []Grain {
	out := make([]Grain, len(e.grains))
	copy(out, e.grains)
	return out
}

// Clear drops every grain.
func (e *Engine) Clear() {
	e.grains = e.grains[:0]
}

// Retire removes grains that reached their end, keeping order.
func (e *Engine) Retire() {
	kept := e.grains[:0]
	for _, g := range e.grains {
		if !g.Done() {
			kept = append(kept, g)
		}
	}
	e.grains = kept
}

// SpawnIfNeeded tops the engine up to Settings.NumGrains. Each new grain
// starts within SpawnJitter of cursor, folded into the loop range [lo, hi],
// and never extends past bufLen. It returns the number of grains added.
func (e *Engine) SpawnIfNeeded(cursor, lo, hi, bufLen int) int {
	s := e.settings
	spawned := 0

	for len(e.grains) < s.NumGrains {
		from := max(cursor-s.SpawnJitter, 0)
		to := max(min(cursor+s.SpawnJitter, bufLen), from)

		start := from + e.rng.IntN(to-from+1)
		start = utils.Fold(start, lo, hi)

		length := s.LengthMin + e.rng.IntN(s.LengthMax-s.LengthMin+1)
		pan := (e.rng.Float32()*2 - 1) * s.StereoWidth

		e.grains = append(e.grains, New(start, min(start+length, bufLen), pan))
		spawned++
	}

	return spawned
}

// Mix adds every grain's contribution to out in insertion order.
func (e *Engine) Mix(out, source []float32) {
	for i := range e.grains {
		e.grains[i].ProcessInto(out, source)
	}
}
