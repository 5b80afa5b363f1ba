// SPDX-License-Identifier: EPL-2.0

package grain

const (
	// FadeLength is the number of samples the envelope spends ramping in
	// and out.
	FadeLength = 400

	baseGain = 0.3
)

// Grain is a single windowed read over [Start, End) of a source buffer.
type Grain struct {
	Position int
	Start    int
	End      int
	Pan      float32
}

// New returns a grain positioned at start.
func New(start, end int, pan float32) Grain {
	return Grain{
		Position: start,
		Start:    start,
		End:      end,
		Pan:      pan,
	}
}

// Done reports whether the grain has played its whole window.
func (g *Grain) Done() bool { return g.Position >= g.End }

// Width is the length of the grain window in samples.
func (g *Grain) Width() int { return g.End - g.Start }

// Envelope is the trapezoid gain at realPos samples into a grain of the
// given width. Grains shorter than two fades get the raw three-branch
// result with no clamping, so the fade-out starts from below 1.
func Envelope(realPos, width int) float32 {
	switch {
	case realPos < FadeLength:
		return float32(realPos) / FadeLength
	case realPos+FadeLength < width:
		return 1
	default:
		return 1 - float32(realPos+FadeLength-width)/FadeLength
	}
}

// Gains returns the left and right channel gain for pan.
func Gains(pan float32) (left, right float32) {
	p := pan*0.5 + 0.5
	return baseGain * max(0, 1-p), baseGain * max(0, p)
}

// ProcessInto adds the grain's contribution to out, an interleaved stereo
// buffer, reading from source at the grain position. The position then
// moves forward by the number of frames in out, stopping at End.
func (g *Grain) ProcessInto(out, source []float32) {
	if g.Position < g.Start || g.Position >= g.End {
		return
	}

	left, right := Gains(g.Pan)
	width := g.End - g.Start
	frames := len(out) / 2

	n := min(frames, min(g.End, len(source))-g.Position)
	offset := g.Position - g.Start
	for i := range n {
		s := source[g.Position+i] * Envelope(offset+i, width)
		out[2*i] += s * left
		out[2*i+1] += s * right
	}

	g.Position = min(g.Position+frames, g.End)
}
