package audio

import (
	"fmt"
	"math"
)

// CycleIndefinite loops the music until it is stopped.
const CycleIndefinite = math.MaxInt

// Player is the playback surface Music drives. *audio.Player from ebiten
// satisfies it.
type Player interface {
	Play()
	Pause()
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
	Volume() float64
	Close() error
}

type Status int

const (
	Stopped Status = iota
	Playing
	Paused
)

func (s Status) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Music is long-running audio such as background loops or recorded
// dialogue. Call Update once per tick so cycles and the bound volume are
// applied.
type Music struct {
	player Player
	status Status

	cycleCount int
	cycles     int

	volume   func() float64
	disposed bool
}

func NewMusic(player Player) *Music {
	return &Music{player: player, cycleCount: 1}
}

func (m *Music) Status() Status {
	return m.status
}

// Start plays from a stopped state. It does nothing while playing or paused.
func (m *Music) Start() {
	if m.status != Stopped || m.disposed {
		return
	}
	m.status = Playing
	m.cycles = 0
	m.applyVolume()
	m.player.Play()
}

func (m *Music) Pause() {
	if m.status != Playing {
		return
	}
	m.status = Paused
	m.player.Pause()
}

func (m *Music) Resume() {
	if m.status != Paused {
		return
	}
	m.status = Playing
	m.player.Play()
}

// Stop halts playback and rewinds to the beginning.
func (m *Music) Stop() {
	m.status = Stopped
	m.player.Pause()
	if err := m.player.Rewind(); err != nil {
		fmt.Printf("music: rewind: %v\n", err)
	}
}

// BindVolume makes src the volume source; it is read on every Update.
func (m *Music) BindVolume(src func() float64) {
	m.volume = src
	m.applyVolume()
}

func (m *Music) Volume() float64 {
	return m.player.Volume()
}

// SetCycleCount sets how many times the music plays. Values below one
// are treated as one.
func (m *Music) SetCycleCount(n int) {
	if n < 1 {
		n = 1
	}
	m.cycleCount = n
}

func (m *Music) CycleCount() int {
	return m.cycleCount
}

// ReachedEnd reports whether every cycle has finished.
func (m *Music) ReachedEnd() bool {
	return m.cycles >= m.cycleCount
}

func (m *Music) Update() {
	if m.disposed {
		return
	}
	m.applyVolume()
	if m.status != Playing || m.player.IsPlaying() {
		return
	}

	// The player ran out of data while we still think we are playing.
	m.cycles++
	if m.cycles < m.cycleCount {
		if err := m.player.Rewind(); err != nil {
			fmt.Printf("music: rewind: %v\n", err)
		}
		m.player.Play()
		return
	}
	m.Stop()
}

// Dispose stops playback and releases the player.
func (m *Music) Dispose() error {
	if m.disposed {
		return nil
	}
	m.Stop()
	m.disposed = true
	return m.player.Close()
}

func (m *Music) applyVolume() {
	if m.volume == nil {
		return
	}
	m.player.SetVolume(clamp01(m.volume()))
}

func (m *Music) String() string {
	cycles := fmt.Sprintf("%d", m.cycleCount)
	if m.cycleCount == CycleIndefinite {
		cycles = "indefinite"
	}
	return fmt.Sprintf("Music [volume=%.2f, cycleCount=%s, status=%s]", m.player.Volume(), cycles, m.status)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
