package entity

import (
	"fmt"

	"github.com/milk9111/ticktimer/audio"
	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/ecs/component"
)

// NewMusicPlayer creates the entity holding global music state. There should
// be at most one per world; the music system uses the first it finds.
func NewMusicPlayer(w *ecs.World, masterVolume float64, trackVolumes map[string]float64) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("music player: world is nil")
	}

	volumes := make(map[string]float64, len(trackVolumes))
	for track, volume := range trackVolumes {
		volumes[track] = volume
	}

	ent := ecs.CreateEntity(w)
	err := ecs.Add(w, ent, component.MusicPlayerComponent.Kind(), &component.MusicPlayer{
		Tracks:       make(map[string]*audio.Music),
		TrackVolumes: volumes,
		MasterVolume: masterVolume,
	})
	if err != nil {
		ecs.DestroyEntity(w, ent)
		return 0, fmt.Errorf("music player: add component: %w", err)
	}
	return ent, nil
}

// DisposeMusicPlayer releases every loaded track and destroys the entity.
func DisposeMusicPlayer(w *ecs.World, ent ecs.Entity) error {
	player, ok := ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	if !ok {
		return nil
	}
	var firstErr error
	for track, music := range player.Tracks {
		if err := music.Dispose(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("music player: dispose %q: %w", track, err)
		}
	}
	player.Tracks = nil
	ecs.DestroyEntity(w, ent)
	return firstErr
}
