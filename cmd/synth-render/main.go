// Command synth-render renders a MIDI file, or a short demo phrase, through
// the synth engine into a 16-bit stereo WAV file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/justyntemme/polysynth/pkg/framework/debug"
	"github.com/justyntemme/polysynth/pkg/framework/state"
	"github.com/justyntemme/polysynth/pkg/render"
	"github.com/justyntemme/polysynth/pkg/synth"
)

func main() {
	patchPath := flag.String("patch", "", "Patch YAML file (optional)")
	midiPath := flag.String("midi", "", "Standard MIDI file to render; the demo phrase when empty")
	output := flag.String("out", "output.wav", "Output WAV file path")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	outRate := flag.Int("out-rate", 0, "Resample the result to this rate (0 keeps the render rate)")
	block := flag.Int("block", 256, "Block size in samples")
	tail := flag.Float64("tail", 2.0, "Seconds rendered after the last event")
	voices := flag.Int("voices", synth.MaxVoices, "Size of the voice pool")
	arpOn := flag.Bool("arp", false, "Force the arpeggiator on")
	normalize := flag.Float64("normalize", 0, "Scale the result to this peak level (0 disables)")
	profile := flag.Bool("profile", false, "Report render load")
	savePatch := flag.String("save-patch", "", "Write the effective patch to this YAML file")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error, off")
	flag.Parse()

	logger := debug.New(os.Stderr, "[synth-render] ", log.Ltime)
	level, err := debug.ParseLevel(*logLevel)
	if err != nil {
		fail("%v", err)
	}
	logger.SetLevel(level)

	registry, err := synth.NewParameters()
	if err != nil {
		fail("parameters: %v", err)
	}
	manager := state.NewManager(registry, logger)
	if *patchPath != "" {
		res, err := manager.LoadFile(*patchPath)
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
	if *savePatch != "" {
		if err := manager.SaveFile(*savePatch, "rendered"); err != nil {
			fail("save patch: %v", err)
		}
	}

	engine, err := synth.NewEngine(registry, logger)
	if err != nil {
		fail("engine: %v", err)
	}
	if err := engine.SetMaxVoices(*voices); err != nil {
		fail("voices: %v", err)
	}
	if err := engine.Prepare(float64(*sampleRate), *block, 2); err != nil {
		fail("prepare: %v", err)
	}
	var profiler *debug.BlockProfiler
	if *profile {
		profiler = engine.EnableProfiling()
	}

	schedule := render.Demo(float64(*sampleRate))
	if *midiPath != "" {
		schedule, err = render.LoadSMF(*midiPath, float64(*sampleRate))
		if err != nil {
			fail("%v", err)
		}
	}
	logger.Info("%d events, %.2f s", len(schedule), float64(schedule.End())/float64(*sampleRate))

	r, err := render.NewRenderer(engine, schedule, *block, int64(*tail*float64(*sampleRate)))
	if err != nil {
		fail("%v", err)
	}
	left, right := r.RenderAll()
	engine.LogStats()
	if profiler != nil {
		logger.Info("%s", profiler.Report())
	}
	logger.LogBufferStats(left, "left")
	logger.LogBufferStats(right, "right")

	if *normalize > 0 {
		gain := debug.NormalizePeak(float32(*normalize), left, right)
		logger.Info("normalized with gain %.3f", gain)
	}

	rate := *sampleRate
	if *outRate > 0 && *outRate != rate {
		left, right, err = render.Resample(left, right, rate, *outRate)
		if err != nil {
			fail("%v", err)
		}
		rate = *outRate
	}

	if err := render.WriteWAV(*output, left, right, rate); err != nil {
		fail("%v", err)
	}
	fmt.Printf("wrote %s (%d frames @ %d Hz)\n", *output, len(left), rate)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "synth-render: "+format+"\n", args...)
	os.Exit(1)
}
