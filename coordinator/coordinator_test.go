// SPDX-License-Identifier: EPL-2.0

package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ik5/granulator/audio"
	"github.com/ik5/granulator/capture"
	"github.com/ik5/granulator/grain"
	"github.com/ik5/granulator/internal/audiotest"
	"github.com/ik5/granulator/internal/log"
	"github.com/ik5/granulator/playback"
)

const (
	waitFor = 2 * time.Second
	poll    = time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePlayback records the order of mutations it receives.
type fakePlayback struct {
	mu     sync.Mutex
	calls  []string
	buffer []float32
	ticks  atomic.Int64
}

func (f *fakePlayback) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakePlayback) SetBuffer(buf []float32) {
	f.mu.Lock()
	f.buffer = buf
	f.mu.Unlock()
	f.record("SetBuffer")
}

func (f *fakePlayback) ClearBuffer()                     { f.record("ClearBuffer") }
func (f *fakePlayback) SetRange(_, _ *int)               { f.record("SetRange") }
func (f *fakePlayback) SetGrainSettings(_ grain.Settings) { f.record("SetGrainSettings") }

func (f *fakePlayback) Cursor() int {
	f.ticks.Add(1)
	return 0
}

func (f *fakePlayback) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// gate blocks conversions until released.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) convert(samples []float32, srcRate, dstRate int) ([]float32, error) {
	g.started <- struct{}{}
	<-g.release
	return audio.Convert(samples, srcRate, dstRate)
}

func newConfig(rec Recorder, pb Playback) Config {
	return Config{
		Recorder:     rec,
		Playback:     pb,
		InputRate:    48000,
		OutputRate:   44100,
		TickInterval: time.Millisecond,
		Logger:       log.Discard(),
	}
}

// start runs c until the test ends.
func start(t *testing.T, c *Coordinator) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("Run did not return after cancel")
		}
	})

	return cancel
}

func newRealCoordinator(t *testing.T) (*Coordinator, *capture.Sink, *playback.Player) {
	t.Helper()

	sink := capture.NewSink(48000)
	player := playback.NewPlayer(44100, grain.NewEngine(grain.DefaultSettings(), 1))

	c, err := New(newConfig(sink, player))
	require.NoError(t, err)

	return c, sink, player
}

func TestNewValidatesConfig(t *testing.T) {
	sink := capture.NewSink(0)
	pb := &fakePlayback{}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"no recorder", Config{Playback: pb, InputRate: 1, OutputRate: 1}},
		{"no playback", Config{Recorder: sink, InputRate: 1, OutputRate: 1}},
		{"zero input rate", Config{Recorder: sink, Playback: pb, OutputRate: 1}},
		{"negative output rate", Config{Recorder: sink, Playback: pb, InputRate: 1, OutputRate: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Config{Recorder: capture.NewSink(0), Playback: &fakePlayback{}, InputRate: 1, OutputRate: 1})
	require.NoError(t, err)

	assert.Equal(t, DefaultQueueSize, cap(c.cmds))
	assert.Equal(t, DefaultTickInterval, c.cfg.TickInterval)
	assert.NotNil(t, c.cfg.Convert)
	assert.NotNil(t, c.cfg.Logger)
}

func TestRecordAndInstall(t *testing.T) {
	c, sink, player := newRealCoordinator(t)
	start(t, c)

	require.NoError(t, c.StartRecord())
	require.Eventually(t, func() bool { return c.Snapshot().IsRecording }, waitFor, poll)
	require.True(t, sink.Recording())

	sink.Write(audiotest.Constant(48000, 0.25))

	require.NoError(t, c.StopRecord())
	require.Eventually(t, func() bool { return c.Snapshot().Generation == 1 }, waitFor, poll)

	snap := c.Snapshot()
	assert.False(t, snap.IsRecording)
	assert.NoError(t, snap.Err)
	assert.InDelta(t, 44100, len(snap.Buffer), 5)
	assert.Len(t, player.Buffer(), len(snap.Buffer))
	assert.False(t, sink.Recording())
}

func TestStopWithoutRecording(t *testing.T) {
	c, _, player := newRealCoordinator(t)
	start(t, c)

	require.NoError(t, c.StopRecord())
	require.NoError(t, c.ClearPlayBuffer())
	require.Eventually(t, func() bool { return c.Snapshot().Generation == 1 }, waitFor, poll)

	snap := c.Snapshot()
	assert.False(t, snap.IsRecording)
	assert.Nil(t, snap.Buffer)
	assert.Nil(t, player.Buffer())
}

func TestCommandsWaitForConversion(t *testing.T) {
	pb := &fakePlayback{}
	g := newGate()

	cfg := newConfig(capture.NewSink(0), pb)
	cfg.Convert = g.convert
	c, err := New(cfg)
	require.NoError(t, err)
	start(t, c)

	require.NoError(t, c.LoadBuffer(audiotest.Ramp(4800), 48000))
	<-g.started

	lo, hi := 10, 20
	require.NoError(t, c.SetSettings(PlaySettings{Grain: grain.DefaultSettings(), RangeStart: &lo, RangeEnd: &hi}))

	// ticks keep flowing while the conversion is held
	before := pb.ticks.Load()
	require.Eventually(t, func() bool { return pb.ticks.Load() > before+3 }, waitFor, poll)
	assert.Empty(t, pb.Calls())

	close(g.release)

	require.Eventually(t, func() bool { return len(pb.Calls()) == 3 }, waitFor, poll)
	assert.Equal(t, []string{"SetBuffer", "SetRange", "SetGrainSettings"}, pb.Calls())
	assert.Equal(t, uint64(1), c.Snapshot().Generation)
}

func TestQueueFull(t *testing.T) {
	cfg := newConfig(capture.NewSink(0), &fakePlayback{})
	cfg.QueueSize = 2
	c, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, c.StartRecord())
	require.NoError(t, c.StopRecord())
	assert.ErrorIs(t, c.ClearPlayBuffer(), ErrQueueFull)
}

func TestClosed(t *testing.T) {
	c, err := New(newConfig(capture.NewSink(0), &fakePlayback{}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Run(ctx))

	select {
	case <-c.Done():
	default:
		t.Fatal("Done not closed after Run returned")
	}

	assert.ErrorIs(t, c.StartRecord(), ErrClosed)
	assert.ErrorIs(t, c.SetSettings(PlaySettings{}), ErrClosed)
	assert.ErrorIs(t, c.Run(context.Background()), ErrRunning)
}

func TestConversionFailureKeepsBuffer(t *testing.T) {
	pb := &fakePlayback{}
	boom := errors.New("boom")

	cfg := newConfig(capture.NewSink(0), pb)
	cfg.Convert = func([]float32, int, int) ([]float32, error) { return nil, boom }
	c, err := New(cfg)
	require.NoError(t, err)
	start(t, c)

	require.NoError(t, c.LoadBuffer(audiotest.Ramp(10), 48000))
	require.Eventually(t, func() bool { return c.Snapshot().Err != nil }, waitFor, poll)

	snap := c.Snapshot()
	assert.ErrorIs(t, snap.Err, boom)
	assert.Zero(t, snap.Generation)
	assert.NotContains(t, pb.Calls(), "SetBuffer")
}

func TestConversionPanic(t *testing.T) {
	sink := capture.NewSink(0)

	cfg := newConfig(sink, &fakePlayback{})
	cfg.Convert = func([]float32, int, int) ([]float32, error) { panic("bad input") }
	c, err := New(cfg)
	require.NoError(t, err)
	start(t, c)

	require.NoError(t, c.StartRecord())
	require.Eventually(t, sink.Recording, waitFor, poll)
	sink.Write(audiotest.Ramp(16))
	require.NoError(t, c.StopRecord())

	require.Eventually(t, func() bool { return c.Snapshot().Err != nil }, waitFor, poll)

	snap := c.Snapshot()
	assert.ErrorIs(t, snap.Err, ErrConversionPanic)
	assert.False(t, snap.IsRecording)
}

func TestEmptyRecordingReportsError(t *testing.T) {
	c, _, player := newRealCoordinator(t)
	start(t, c)

	require.NoError(t, c.StartRecord())
	require.NoError(t, c.StopRecord())
	require.Eventually(t, func() bool { return c.Snapshot().Err != nil }, waitFor, poll)

	assert.ErrorIs(t, c.Snapshot().Err, audio.ErrEmptyInput)
	assert.False(t, c.Snapshot().IsRecording)
	assert.Nil(t, player.Buffer())
}

func TestShutdownWaitsForConversion(t *testing.T) {
	pb := &fakePlayback{}
	g := newGate()

	cfg := newConfig(capture.NewSink(0), pb)
	cfg.Convert = g.convert
	c, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	require.NoError(t, c.LoadBuffer(audiotest.Ramp(480), 48000))
	<-g.started
	cancel()

	select {
	case <-errc:
		t.Fatal("Run returned with a conversion in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(g.release)
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"SetBuffer"}, pb.Calls())
	assert.Equal(t, uint64(1), c.Snapshot().Generation)
}

func TestClearPlayBuffer(t *testing.T) {
	c, _, player := newRealCoordinator(t)
	start(t, c)

	require.NoError(t, c.LoadBuffer(audiotest.Ramp(44100), 44100))
	require.NoError(t, c.ClearPlayBuffer())
	require.Eventually(t, func() bool { return c.Snapshot().Generation == 2 }, waitFor, poll)

	snap := c.Snapshot()
	assert.Nil(t, snap.Buffer)
	assert.Zero(t, snap.Cursor)
	assert.Nil(t, player.Buffer())
}

func TestSetSettings(t *testing.T) {
	c, _, player := newRealCoordinator(t)
	start(t, c)

	require.NoError(t, c.LoadBuffer(audiotest.Ramp(44100), 44100))

	lo, hi := 1000, 5000
	s := grain.Settings{NumGrains: 3, LengthMin: 800, LengthMax: 800, SpawnJitter: 0, StereoWidth: 0.5}
	require.NoError(t, c.SetSettings(PlaySettings{Grain: s, RangeStart: &lo, RangeEnd: &hi}))

	require.Eventually(t, func() bool { return player.GrainSettings() == s }, waitFor, poll)

	gotLo, gotHi, ok := player.Range()
	require.True(t, ok)
	assert.Equal(t, 1000, gotLo)
	assert.Equal(t, 5000, gotHi)
}

func TestLastSettingsWin(t *testing.T) {
	c, _, player := newRealCoordinator(t)
	start(t, c)

	for n := 1; n <= 5; n++ {
		s := grain.DefaultSettings()
		s.NumGrains = n
		require.NoError(t, c.SetSettings(PlaySettings{Grain: s}))
	}

	require.Eventually(t, func() bool { return player.GrainSettings().NumGrains == 5 }, waitFor, poll)
}

func TestTickPublishesCursor(t *testing.T) {
	c, _, player := newRealCoordinator(t)
	start(t, c)

	require.NoError(t, c.LoadBuffer(audiotest.Ramp(44100), 44100))
	require.Eventually(t, func() bool { return c.Snapshot().Generation == 1 }, waitFor, poll)

	out := make([]float32, 512*playback.Channels)
	player.Render(out)
	player.Render(out)

	require.Eventually(t, func() bool { return c.Snapshot().Cursor == player.Cursor() }, waitFor, poll)
	assert.Equal(t, 1024, c.Snapshot().Cursor)
}
