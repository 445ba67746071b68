package system

import (
	"fmt"
	"strings"

	"github.com/milk9111/ticktimer/audio"
	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/ecs/component"
)

const (
	defaultMusicVolume      = 1.0
	defaultMusicFadeSeconds = 0.5
)

// TrackLoader opens a player for a track name.
type TrackLoader func(track string) (audio.Player, error)

type MusicSystem struct {
	load TrackLoader
}

func NewMusicSystem(load TrackLoader) *MusicSystem {
	return &MusicSystem{load: load}
}

func RequestMusic(w *ecs.World, track string) {
	RequestMusicWithOptions(w, &component.MusicRequest{Track: track, Volume: 0, Loop: true, FadeOutSeconds: defaultMusicFadeSeconds})
}

func RequestMusicWithOptions(w *ecs.World, req *component.MusicRequest) {
	if w == nil || req == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.MusicRequestComponent.Kind(), req)
}

func StopMusic(w *ecs.World) {
	RequestMusicWithOptions(w, &component.MusicRequest{FadeOutSeconds: defaultMusicFadeSeconds})
}

// PauseMusic pauses the current song and freezes any pending fade. Songs
// started while paused begin paused.
func PauseMusic(w *ecs.World) {
	player := musicPlayer(w)
	if player == nil {
		return
	}
	player.Paused = true
	if m := currentTrack(player); m != nil {
		m.Pause()
	}
}

// ResumeMusic resumes a song paused by PauseMusic.
func ResumeMusic(w *ecs.World) {
	player := musicPlayer(w)
	if player == nil {
		return
	}
	player.Paused = false
	if m := currentTrack(player); m != nil {
		m.Resume()
	}
}

// SetMasterVolume changes the volume every track is scaled by.
func SetMasterVolume(w *ecs.World, volume float64) {
	if player := musicPlayer(w); player != nil {
		player.MasterVolume = volume
	}
}

func (m *MusicSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	latest, requestEntities := m.consumeLatestRequest(w)
	for _, ent := range requestEntities {
		ecs.DestroyEntity(w, ent)
	}

	player := musicPlayer(w)
	if player == nil {
		return
	}
	if player.Tracks == nil {
		player.Tracks = make(map[string]*audio.Music)
	}
	if player.TrackVolumes == nil {
		player.TrackVolumes = make(map[string]float64)
	}

	if latest != nil {
		m.applyRequest(player, *latest)
	}

	if player.PendingActive && !player.Paused {
		m.updateTransition(player, w.DeltaTime())
	}

	for _, music := range player.Tracks {
		music.Update()
	}
}

func (m *MusicSystem) consumeLatestRequest(w *ecs.World) (*component.MusicRequest, []ecs.Entity) {
	var latest *component.MusicRequest
	requestEntities := make([]ecs.Entity, 0)

	ecs.ForEach(w, component.MusicRequestComponent.Kind(), func(ent ecs.Entity, req *component.MusicRequest) {
		requestEntities = append(requestEntities, ent)
		copy := *req
		latest = &copy
	})

	return latest, requestEntities
}

func (m *MusicSystem) applyRequest(player *component.MusicPlayer, req component.MusicRequest) {
	track := strings.TrimSpace(req.Track)
	volume := req.Volume
	if volume <= 0 {
		if v, ok := player.TrackVolumes[track]; ok && v > 0 {
			volume = v
		} else {
			volume = defaultMusicVolume
		}
	}
	if volume > 1 {
		volume = 1
	}
	fadeSeconds := req.FadeOutSeconds
	if fadeSeconds <= 0 {
		fadeSeconds = defaultMusicFadeSeconds
	}

	current := currentTrack(player)
	if track == "" {
		player.PendingActive = false
		if current == nil {
			player.CurrentTrack = ""
			player.CurrentVolume = 0
			player.CurrentLoop = false
			return
		}
		player.PendingTrack = ""
		player.PendingVolume = 0
		player.PendingLoop = false
		player.PendingActive = true
		player.FadeStep = fadeStep(player.CurrentVolume, fadeSeconds)
		return
	}

	if !player.PendingActive && player.CurrentTrack == track && current != nil {
		player.CurrentVolume = volume
		if current.Status() == audio.Stopped {
			current.Start()
			if player.Paused {
				current.Pause()
			}
		}
		return
	}

	player.PendingTrack = track
	player.PendingVolume = volume
	player.PendingLoop = req.Loop
	player.PendingActive = true
	if current == nil {
		m.switchToPending(player)
		return
	}
	player.FadeStep = fadeStep(player.CurrentVolume, fadeSeconds)
}

func fadeStep(volume, seconds float64) float64 {
	step := volume / seconds
	if step <= 0 {
		return 1
	}
	return step
}

func (m *MusicSystem) updateTransition(player *component.MusicPlayer, dt float64) {
	current := currentTrack(player)
	if current == nil {
		m.switchToPending(player)
		return
	}

	player.CurrentVolume -= player.FadeStep * dt
	if player.CurrentVolume > 0 {
		return
	}

	player.CurrentVolume = 0
	current.Stop()
	player.CurrentTrack = ""
	player.CurrentLoop = false
	m.switchToPending(player)
}

func (m *MusicSystem) switchToPending(player *component.MusicPlayer) {
	if !player.PendingActive {
		return
	}

	reqTrack := strings.TrimSpace(player.PendingTrack)
	reqVolume := player.PendingVolume
	reqLoop := player.PendingLoop

	player.PendingTrack = ""
	player.PendingVolume = 0
	player.PendingLoop = false
	player.PendingActive = false
	player.FadeStep = 0

	if reqTrack == "" {
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentLoop = false
		return
	}

	music, err := m.musicForTrack(player, reqTrack)
	if err != nil {
		fmt.Printf("music: load %q: %v\n", reqTrack, err)
		player.CurrentTrack = ""
		player.CurrentVolume = 0
		player.CurrentLoop = false
		return
	}

	player.CurrentTrack = reqTrack
	player.CurrentVolume = reqVolume
	player.CurrentLoop = reqLoop
	if reqLoop {
		music.SetCycleCount(audio.CycleIndefinite)
	} else {
		music.SetCycleCount(1)
	}
	music.Stop()
	music.Start()
	if player.Paused {
		music.Pause()
	}
}

func (m *MusicSystem) musicForTrack(player *component.MusicPlayer, track string) (*audio.Music, error) {
	if existing, ok := player.Tracks[track]; ok && existing != nil {
		return existing, nil
	}
	if m.load == nil {
		return nil, fmt.Errorf("no track loader")
	}

	p, err := m.load(track)
	if err != nil {
		return nil, err
	}
	music := audio.NewMusic(p)
	music.BindVolume(func() float64 {
		if player.CurrentTrack != track {
			return 0
		}
		return player.CurrentVolume * player.MasterVolume
	})
	player.Tracks[track] = music
	return music, nil
}

func musicPlayer(w *ecs.World) *component.MusicPlayer {
	ent, ok := ecs.First(w, component.MusicPlayerComponent.Kind())
	if !ok {
		return nil
	}
	player, ok := ecs.Get(w, ent, component.MusicPlayerComponent.Kind())
	if !ok {
		return nil
	}
	return player
}

func currentTrack(player *component.MusicPlayer) *audio.Music {
	if player == nil || strings.TrimSpace(player.CurrentTrack) == "" || player.Tracks == nil {
		return nil
	}
	return player.Tracks[player.CurrentTrack]
}
