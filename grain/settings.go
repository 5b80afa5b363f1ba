// SPDX-License-Identifier: EPL-2.0

package grain

// Operator bounds applied by Settings.Clamp.
const (
	MinGrains      = 1
	MaxGrains      = 200
	MinGrainLength = 800
	MaxGrainLength = 10000
	MaxSpawnJitter = 50000
)

// Settings control how grains are spawned.
type Settings struct {
	// NumGrains is the number of grains kept alive at once.
	NumGrains int
	// LengthMin and LengthMax bound the grain length in samples.
	LengthMin int
	LengthMax int
	// SpawnJitter is the maximum distance in samples between the cursor
	// and a new grain's start.
	SpawnJitter int
	// StereoWidth bounds the random pan in [-StereoWidth, StereoWidth].
	StereoWidth float32
}

// DefaultSettings is one centred grain of 1000 to 3000 samples.
func DefaultSettings() Settings {
	return Settings{
		NumGrains: 1,
		LengthMin: 1000,
		LengthMax: 3000,
	}
}

// Normalize makes s safe to draw from: no negative values, LengthMin <=
// LengthMax and StereoWidth in [0, 1].
func (s Settings) Normalize() Settings {
	s.NumGrains = max(s.NumGrains, 0)
	s.LengthMin = max(s.LengthMin, 0)
	s.LengthMax = max(s.LengthMax, 0)
	if s.LengthMin > s.LengthMax {
		s.LengthMin, s.LengthMax = s.LengthMax, s.LengthMin
	}
	s.SpawnJitter = max(s.SpawnJitter, 0)
	s.StereoWidth = min(max(s.StereoWidth, 0), 1)

	return s
}

// Clamp normalizes s and limits it to the ranges an operator may dial in.
func (s Settings) Clamp() Settings {
	s = s.Normalize()
	s.NumGrains = min(max(s.NumGrains, MinGrains), MaxGrains)
	s.LengthMin = min(max(s.LengthMin, MinGrainLength), MaxGrainLength)
	s.LengthMax = min(max(s.LengthMax, MinGrainLength), MaxGrainLength)
	s.SpawnJitter = min(s.SpawnJitter, MaxSpawnJitter)

	return s
}
