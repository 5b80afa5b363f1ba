// SPDX-License-Identifier: EPL-2.0

package granulator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ik5/granulator/config"
	"github.com/ik5/granulator/coordinator"
	"github.com/ik5/granulator/grain"
	"github.com/ik5/granulator/internal/audiotest"
	"github.com/ik5/granulator/internal/log"
	"github.com/ik5/granulator/playback"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.TickInterval = time.Millisecond
	return cfg
}

// runSession runs s until the test ends.
func runSession(t *testing.T, s *Session) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errc)
		require.NoError(t, s.Close())
	})
}

// writeStereoWAV writes frames of (l, r) pairs as a 16-bit WAV file.
func writeStereoWAV(t *testing.T, path string, rate int, l, r int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	data := make([]int, 0, 2*rate/10)
	for range rate / 10 {
		data = append(data, l, r)
	}

	enc := gowav.NewEncoder(f, rate, 16, 2, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestHeadlessRecordAndPlay(t *testing.T) {
	s, err := NewHeadless(testConfig(), 48000, 44100, log.Discard())
	require.NoError(t, err)
	runSession(t, s)

	c := s.Coordinator()

	require.NoError(t, c.StartRecord())
	require.Eventually(t, s.Sink().Recording, time.Second, time.Millisecond)

	n, err := s.Sink().ReadFrom(audiotest.NewSineSource(48000, 1, 48000, 440))
	require.NoError(t, err)
	require.EqualValues(t, 48000, n)

	require.NoError(t, c.StopRecord())
	require.Eventually(t, func() bool { return c.Snapshot().Generation == 1 }, 2*time.Second, time.Millisecond)

	snap := c.Snapshot()
	assert.False(t, snap.IsRecording)
	assert.InDelta(t, 44100, len(snap.Buffer), 5)

	lo, hi := 1000, 5000
	settings := grain.Settings{NumGrains: 3, LengthMin: 800, LengthMax: 800, StereoWidth: 1}
	require.NoError(t, c.SetSettings(coordinator.PlaySettings{Grain: settings, RangeStart: &lo, RangeEnd: &hi}))
	require.Eventually(t, func() bool { return s.Player().GrainSettings() == settings }, time.Second, time.Millisecond)

	out := make([]float32, 512*playback.Channels)
	got, err := s.Player().ReadSamples(out)
	require.NoError(t, err)
	require.Equal(t, len(out), got)

	assert.Equal(t, 3, s.Player().ActiveGrains())
	assert.Equal(t, 4512, s.Player().Cursor())

	var energy float64
	for _, v := range out {
		energy += float64(v * v)
	}
	assert.Positive(t, energy, "grains over a sine must be audible")
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "take.WAV")
	writeStereoWAV(t, path, 22050, 16384, -8192)

	samples, rate, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 22050, rate)
	require.Len(t, samples, 2205)
	assert.InDelta(t, 0.125, samples[0], 1e-6)
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := LoadFile(filepath.Join(dir, "song.flac"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, _, err = LoadFile(filepath.Join(dir, "missing.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	junk := filepath.Join(dir, "junk.ogg")
	require.NoError(t, os.WriteFile(junk, []byte("not audio"), 0o600))
	_, _, err = LoadFile(junk)
	assert.Error(t, err)
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"aif", "aiff", "mp3", "oga", "ogg", "wav", "wave"},
		DefaultRegistry().Formats())
}

func TestSessionLoad(t *testing.T) {
	s, err := NewHeadless(testConfig(), 48000, 44100, log.Discard())
	require.NoError(t, err)
	runSession(t, s)

	path := filepath.Join(t.TempDir(), "loop.wav")
	writeStereoWAV(t, path, 44100, 1000, 1000)

	require.NoError(t, s.Load(path))
	require.Eventually(t, func() bool { return s.Coordinator().Snapshot().Generation == 1 }, time.Second, time.Millisecond)

	assert.InDelta(t, 4410, len(s.Player().Buffer()), 5)
	assert.ErrorIs(t, s.Load(filepath.Join(t.TempDir(), "x.mid")), ErrUnsupportedFormat)
}

func TestNewHeadlessRejectsBadRates(t *testing.T) {
	t.Parallel()

	_, err := NewHeadless(testConfig(), 0, 44100, log.Discard())
	assert.ErrorIs(t, err, coordinator.ErrInvalidConfig)
}
