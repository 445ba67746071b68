package component

import "github.com/milk9111/ticktimer/audio"

// MusicPlayer stores global music playback state on a dedicated ECS entity.
// The music system mutates this component; no playback state is kept on the system.
type MusicPlayer struct {
	Tracks       map[string]*audio.Music
	TrackVolumes map[string]float64

	// MasterVolume scales every track. Bound into each Music volume source.
	MasterVolume float64

	CurrentTrack  string
	CurrentVolume float64
	CurrentLoop   bool

	PendingTrack  string
	PendingVolume float64
	PendingLoop   bool
	PendingActive bool

	// FadeStep is the volume drop per second while fading out.
	FadeStep float64

	// Paused holds the current song and any fade in progress.
	Paused bool
}

var MusicPlayerComponent = NewComponent[MusicPlayer]()
