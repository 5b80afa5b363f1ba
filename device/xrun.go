// SPDX-License-Identifier: EPL-2.0

package device

import (
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

type xrunCounters struct {
	inputOverflow   atomic.Uint64
	inputUnderflow  atomic.Uint64
	outputOverflow  atomic.Uint64
	outputUnderflow atomic.Uint64
}

type xrunCounts struct {
	inputOverflow   uint64
	inputUnderflow  uint64
	outputOverflow  uint64
	outputUnderflow uint64
}

func (x xrunCounts) total() uint64 {
	return x.inputOverflow + x.inputUnderflow + x.outputOverflow + x.outputUnderflow
}

// observe is called from the audio callbacks and must not block.
func (c *xrunCounters) observe(flags portaudio.StreamCallbackFlags) {
	if flags&portaudio.InputOverflow != 0 {
		c.inputOverflow.Add(1)
	}
	if flags&portaudio.InputUnderflow != 0 {
		c.inputUnderflow.Add(1)
	}
	if flags&portaudio.OutputOverflow != 0 {
		c.outputOverflow.Add(1)
	}
	if flags&portaudio.OutputUnderflow != 0 {
		c.outputUnderflow.Add(1)
	}
}

func (c *xrunCounters) drain() xrunCounts {
	return xrunCounts{
		inputOverflow:   c.inputOverflow.Swap(0),
		inputUnderflow:  c.inputUnderflow.Swap(0),
		outputOverflow:  c.outputOverflow.Swap(0),
		outputUnderflow: c.outputUnderflow.Swap(0),
	}
}
