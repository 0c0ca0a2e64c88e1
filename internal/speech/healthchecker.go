package speech

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lorettarehm/audhd.ai/internal/health"
)

// SynthesizerHealthChecker monitors a synthesizer through its HealthPing.
// Synthesizers without one are reported healthy; probing them would spend
// character quota.
type SynthesizerHealthChecker struct {
	synth        Synthesizer
	healthy      atomic.Int32
	log          zerolog.Logger
	checkTimeout time.Duration
}

func NewSynthesizerHealthChecker(s Synthesizer, log zerolog.Logger, checkTimeout time.Duration) *SynthesizerHealthChecker {
	hc := &SynthesizerHealthChecker{synth: s, log: log, checkTimeout: checkTimeout}
	hc.healthy.Store(0) // start unhealthy until first successful check
	return hc
}

func (c *SynthesizerHealthChecker) Name() string    { return "speech" }
func (c *SynthesizerHealthChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Check runs one check and records the result.
func (c *SynthesizerHealthChecker) Check(ctx context.Context) {
	p, ok := any(c.synth).(health.HealthPinger)
	if !ok {
		c.healthy.Store(1)
		return
	}
	to := c.checkTimeout
	if to <= 0 {
		to = 2 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, to)
	defer cancel()
	if err := p.HealthPing(checkCtx); err != nil {
		c.healthy.Store(0)
		c.log.Error().Stack().Str("checker", c.Name()).Err(err).Msg("speech health check failed")
		return
	}
	c.healthy.Store(1)
}

func (c *SynthesizerHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}
