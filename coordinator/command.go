// SPDX-License-Identifier: EPL-2.0

package coordinator

import "github.com/ik5/granulator/grain"

// PlaySettings is what an operator controls while playing: the grain
// settings and the loop range. A nil bound means the matching buffer edge.
type PlaySettings struct {
	Grain grain.Settings

	RangeStart *int
	RangeEnd   *int
}

type commandKind int

const (
	cmdStartRecord commandKind = iota
	cmdStopRecord
	cmdClearPlayBuffer
	cmdSetSettings
	cmdLoadBuffer
)

func (k commandKind) String() string {
	switch k {
	case cmdStartRecord:
		return "start record"
	case cmdStopRecord:
		return "stop record"
	case cmdClearPlayBuffer:
		return "clear play buffer"
	case cmdSetSettings:
		return "set settings"
	case cmdLoadBuffer:
		return "load buffer"
	}
	return "unknown"
}

type command struct {
	kind     commandKind
	settings PlaySettings

	// cmdLoadBuffer only
	samples    []float32
	sampleRate int
}
