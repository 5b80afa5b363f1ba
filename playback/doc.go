// SPDX-License-Identifier: EPL-2.0

// Package playback holds the buffer being played, its loop range and the
// cursor that seeds new grains, and renders them through a grain.Engine.
//
// On every Render the cursor moves forward by one sample per output frame,
// wrapping inside the loop range. Grains read from their own positions;
// the cursor only decides where new grains start.
package playback
