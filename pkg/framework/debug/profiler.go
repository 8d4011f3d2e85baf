package debug

import (
	"fmt"
	"time"
)

// BlockProfiler accumulates render time per audio block and relates it to
// the real time the block represents.
type BlockProfiler struct {
	sampleRate float64
	blocks     uint64
	samples    uint64
	total      time.Duration
	worst      time.Duration
	worstLen   int
}

func NewBlockProfiler(sampleRate float64) *BlockProfiler {
	return &BlockProfiler{sampleRate: sampleRate}
}

// Start begins timing one block of numSamples samples.
func (p *BlockProfiler) Start(numSamples int) func() {
	start := time.Now()
	return func() {
		p.Record(numSamples, time.Since(start))
	}
}

func (p *BlockProfiler) Record(numSamples int, elapsed time.Duration) {
	p.blocks++
	p.samples += uint64(numSamples)
	p.total += elapsed
	if elapsed > p.worst {
		p.worst = elapsed
		p.worstLen = numSamples
	}
}

// Load returns average render time as a fraction of real time.
func (p *BlockProfiler) Load() float64 {
	if p.samples == 0 || p.sampleRate <= 0 {
		return 0
	}
	audio := float64(p.samples) / p.sampleRate
	return p.total.Seconds() / audio
}

// WorstLoad returns the load of the slowest block.
func (p *BlockProfiler) WorstLoad() float64 {
	if p.worstLen == 0 || p.sampleRate <= 0 {
		return 0
	}
	return p.worst.Seconds() / (float64(p.worstLen) / p.sampleRate)
}

func (p *BlockProfiler) Blocks() uint64 {
	return p.blocks
}

func (p *BlockProfiler) Report() string {
	return fmt.Sprintf("%d blocks, %.2fs audio in %v, load %.2f%% (worst %.2f%%)",
		p.blocks, float64(p.samples)/p.sampleRate, p.total.Round(time.Microsecond),
		p.Load()*100, p.WorstLoad()*100)
}
