// Command synth-play plays a MIDI file, or the demo phrase, through the
// synth engine on the default audio device.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/justyntemme/polysynth/pkg/framework/debug"
	"github.com/justyntemme/polysynth/pkg/framework/state"
	"github.com/justyntemme/polysynth/pkg/render"
	"github.com/justyntemme/polysynth/pkg/synth"
)

func main() {
	patchPath := flag.String("patch", "", "Patch YAML file (optional)")
	midiPath := flag.String("midi", "", "Standard MIDI file to play; the demo phrase when empty")
	sampleRate := flag.Int("sample-rate", 48000, "Device sample rate in Hz")
	block := flag.Int("block", 256, "Block size in samples")
	latency := flag.Duration("latency", 50*time.Millisecond, "Device buffer length")
	tail := flag.Float64("tail", 2.0, "Seconds played after the last event")
	arpOn := flag.Bool("arp", false, "Force the arpeggiator on")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error, off")
	flag.Parse()

	logger := debug.New(os.Stderr, "[synth-play] ", log.Ltime)
	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		fail("%v", err)
	}
	logger.SetLevel(level)

	registry, err := synth.NewParameters()
	if err != nil {
		fail("parameters: %v", err)
	}
	if *patchPath != "" {
		res, err := state.NewManager(registry, logger).LoadFile(*patchPath)
		if err != nil {
			fail("patch: %v", err)
		}
		for _, w := range res.Warnings {
			logger.Warn("patch: %v", w)
		}
	}
	if *arpOn {
		registry.Get(synth.ParamArpOn).SetValue(1)
	}

	engine, err := synth.NewEngine(registry, logger)
	if err != nil {
		fail("engine: %v", err)
	}
	if err := engine.Prepare(float64(*sampleRate), *block, 2); err != nil {
		fail("prepare: %v", err)
	}
	profiler := engine.EnableProfiling()

	schedule := render.Demo(float64(*sampleRate))
	if *midiPath != "" {
		if schedule, err = render.LoadSMF(*midiPath, float64(*sampleRate)); err != nil {
			fail("%v", err)
		}
	}
	r, err := render.NewRenderer(engine, schedule, *block, int64(*tail*float64(*sampleRate)))
	if err != nil {
		fail("%v", err)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   *sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   *latency,
	})
	if err != nil {
		fail("audio device: %v", err)
	}
	<-ready

	player := otoCtx.NewPlayer(r)
	defer player.Close()
	player.Play()
	logger.Info("playing %.1f s", float64(r.Length())/float64(*sampleRate))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			logger.Info("interrupted")
			player.Pause()
			return
		case <-ticker.C:
		}
	}
	if err := player.Err(); err != nil {
		logger.Error("playback: %v", err)
	}
	engine.LogStats()
	logger.Info("%s", profiler.Report())
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "synth-play: "+format+"\n", args...)
	os.Exit(1)
}
