package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/ticktimer/audio"
	"github.com/milk9111/ticktimer/config"
	"github.com/milk9111/ticktimer/ecs/system"
)

func main() {
	configPath := flag.String("config", "settings.yaml", "settings file (embedded defaults when missing)")
	debug := flag.Bool("debug", false, "enable debug mode (hot reload settings)")
	frames := flag.Int("frames", 0, "run this many ticks headless and exit")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	settings = settings.ReadOnly()

	if *frames > 0 {
		runHeadless(settings, *configPath, *frames)
		return
	}

	var watcher *config.Watcher
	if *debug || settings.ApplicationMode == config.ModeDebug {
		watcher, err = config.NewWatcher(filepath.Dir(*configPath))
		if err != nil {
			log.Printf("config: watch disabled: %v", err)
		}
	}

	game, err := NewGame(settings, *configPath, ebaudio.NewContext(audio.SampleRate), watcher)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := game.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()
	game.EnableUI()

	ebiten.SetWindowSize(settings.Width, settings.Height)
	ebiten.SetWindowTitle(settings.Title)
	ebiten.SetTPS(settings.TPS)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(settings config.Settings, configPath string, frames int) {
	game, err := NewGame(settings, configPath, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	dt := 1 / float64(settings.TPS)
	for i := 0; i < frames; i++ {
		game.Step(dt)
	}
	for _, line := range game.events.lines {
		log.Print(line)
	}
	log.Printf("ran %d ticks (%.2fs), %d timers still active", frames, game.world.Elapsed(), system.ActiveTimers(game.world))
}
