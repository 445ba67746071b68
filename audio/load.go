package audio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// SampleRate is the rate the shared audio context runs at.
const SampleRate = 44100

// LoadPlayer reads a track from disk and creates a player on ctx. Files
// that are not wav, mp3 or ogg are treated as raw PCM in ebiten's format.
func LoadPlayer(ctx *ebaudio.Context, path string) (*ebaudio.Player, error) {
	if ctx == nil {
		return nil, fmt.Errorf("audio: nil context")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("audio: read %q: %w", path, err)
	}
	reader := bytes.NewReader(b)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), reader)
		if err != nil {
			return nil, fmt.Errorf("audio: decode wav %q: %w", path, err)
		}
		return ctx.NewPlayer(stream)
	case ".mp3":
		stream, err := mp3.DecodeWithSampleRate(ctx.SampleRate(), reader)
		if err != nil {
			return nil, fmt.Errorf("audio: decode mp3 %q: %w", path, err)
		}
		return ctx.NewPlayer(stream)
	case ".ogg":
		stream, err := vorbis.DecodeWithSampleRate(ctx.SampleRate(), reader)
		if err != nil {
			return nil, fmt.Errorf("audio: decode ogg %q: %w", path, err)
		}
		return ctx.NewPlayer(stream)
	}

	return ctx.NewPlayerFromBytes(b), nil
}

// Loader adapts LoadPlayer to the music system's track loader.
func Loader(ctx *ebaudio.Context) func(track string) (Player, error) {
	return func(track string) (Player, error) {
		p, err := LoadPlayer(ctx, track)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
