package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/ticktimer/audio"
	"github.com/milk9111/ticktimer/config"
	"github.com/milk9111/ticktimer/ecs"
	"github.com/milk9111/ticktimer/ecs/component"
	"github.com/milk9111/ticktimer/ecs/entity"
	"github.com/milk9111/ticktimer/ecs/system"
	"github.com/milk9111/ticktimer/fxmath"
)

const recentEvents = 8

type Game struct {
	frames int

	settings   config.Settings
	configPath string
	world      *ecs.World
	music      ecs.Entity
	events     *eventLog

	ui        *ebitenui.UI
	uiEnabled bool
	paused    bool
	quit      bool
	watcher   *config.Watcher
}

// NewGame builds the world from settings. A nil audio context disables
// music, and a nil watcher disables hot reload.
func NewGame(settings config.Settings, configPath string, audioCtx *ebaudio.Context, watcher *config.Watcher) (*Game, error) {
	var loader system.TrackLoader
	if audioCtx != nil {
		loader = audio.Loader(audioCtx)
	}

	events := &eventLog{limit: recentEvents}
	world := ecs.NewWorld(
		system.NewTimerSystem(),
		system.NewLifetimeSystem(),
		system.NewMusicSystem(loader),
		events,
	)

	music, err := entity.NewMusicPlayer(world, settings.MusicVolume, nil)
	if err != nil {
		return nil, err
	}
	if _, err := system.SpawnTimers(world, settings.Timers); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if track, ok := fxmath.RandomElement(settings.Playlist); ok && loader != nil {
		system.RequestMusic(world, track)
	}

	return &Game{
		settings:   settings,
		configPath: configPath,
		world:      world,
		music:      music,
		events:     events,
		watcher:    watcher,
	}, nil
}

// EnableUI turns on the pause overlay. Only call this for windowed runs.
func (g *Game) EnableUI() {
	g.uiEnabled = true
}

// SetPaused pauses or resumes every timer, lifetime and the music.
func (g *Game) SetPaused(paused bool) {
	if g.paused == paused {
		return
	}
	g.paused = paused
	if paused {
		if g.uiEnabled {
			g.ui = NewPauseUI(g)
		}
		system.PauseTimers(g.world)
		system.PauseLifetimes(g.world)
		system.PauseMusic(g.world)
		return
	}
	system.ResumeTimers(g.world)
	system.ResumeLifetimes(g.world)
	system.ResumeMusic(g.world)
}

// Step advances the game by dt seconds without touching input or rendering.
func (g *Game) Step(dt float64) {
	g.frames++
	g.pollWatcher()
	g.world.Tick(dt)
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.SetPaused(!g.paused)
	}
	if g.paused && g.ui != nil {
		g.ui.Update()
	}

	g.Step(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	status := "running"
	if g.paused {
		status = "paused"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"%s %s\nFrames: %d    FPS: %.2f    World: %.2fs\nTimers: %d active, %d total (%s)\n\n%s",
		g.settings.Title, g.settings.Version,
		g.frames, ebiten.ActualFPS(), g.world.Elapsed(),
		system.ActiveTimers(g.world), ecs.Count(g.world, component.TimerComponent.Kind()), status,
		strings.Join(g.events.lines, "\n"),
	))

	if g.paused && g.ui != nil {
		g.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.settings.Width, g.settings.Height
}

// Close releases audio and the watcher.
func (g *Game) Close() error {
	var errs []error
	if err := entity.DisposeMusicPlayer(g.world, g.music); err != nil {
		errs = append(errs, err)
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("config: %s changed, reloading", path)
			g.reload()
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("config: watcher: %v", err)
			}
			return
		default:
			return
		}
	}
}

// reload re-reads settings. Timers that disappeared are expired, new ones
// are spawned, and existing ones keep running untouched.
func (g *Game) reload() {
	next, err := config.Load(g.configPath)
	if err != nil {
		log.Printf("config: reload: %v", err)
		return
	}

	wanted := make(map[string]bool, len(next.Timers))
	for _, spec := range next.Timers {
		wanted[spec.Name] = true
	}
	running := make(map[string]bool)
	ecs.ForEach(g.world, component.TimerComponent.Kind(), func(_ ecs.Entity, t *component.Timer) {
		if t.Name == "" || t.Action == nil {
			return
		}
		if !wanted[t.Name] {
			t.Action.Expire()
			return
		}
		running[t.Name] = true
	})

	var added []config.TimerSpec
	for _, spec := range next.Timers {
		if !running[spec.Name] {
			added = append(added, spec)
		}
	}
	if _, err := system.SpawnTimers(g.world, added); err != nil {
		log.Printf("config: reload timers: %v", err)
		return
	}
	if g.paused {
		system.PauseTimers(g.world)
	}

	system.SetMasterVolume(g.world, next.MusicVolume)
	g.settings = next.ReadOnly()
}

// eventLog keeps the most recent world events for the overlay. It must
// run last so it sees everything pushed during the tick.
type eventLog struct {
	limit int
	lines []string
}

func (l *eventLog) Update(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		line := evt.Type
		if evt.Data != nil {
			line = fmt.Sprintf("%s %v", evt.Type, evt.Data)
		}
		l.lines = append(l.lines, fmt.Sprintf("[%6.2f] %s", w.Elapsed(), line))
	}
	if over := len(l.lines) - l.limit; over > 0 {
		l.lines = append([]string(nil), l.lines[over:]...)
	}
}
