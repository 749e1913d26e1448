package app

import (
	"time"

	"github.com/arvind/mudra/internal/handinput"
	"github.com/arvind/mudra/internal/scene/core"
)

// RenderIntervalDefault paces the render tick when Config.RenderIntervalMs
// is unset.
const RenderIntervalDefault = 16 * time.Millisecond

// runPipeline is the application's single executor goroutine (spec §5
// "Scheduling model": every Orchestrator.Tick/Render call is serialized
// onto one goroutine). It owns two clocks: a detector-tick clock, driven
// by samples pulled from the landmark Source at a motion-gated cadence,
// and a render-tick clock, driven by a fixed ticker. Both feed the same
// Orchestrator, and nothing else may call into it while this goroutine
// runs — the teacher's runPipeline used the same single-goroutine,
// idle/active FPS-switching shape, gating on capture.MotionDetector
// instead of a landmark Source.
func (a *App) runPipeline() {
	renderInterval := time.Duration(a.config.RenderIntervalMs) * time.Millisecond
	if renderInterval <= 0 {
		renderInterval = RenderIntervalDefault
	}
	renderTicker := time.NewTicker(renderInterval)
	defer renderTicker.Stop()

	sampleCh := make(chan handinput.Sample, 1)
	sampleErrCh := make(chan error, 1)
	pullerDone := make(chan struct{})
	go a.runSamplePuller(sampleCh, sampleErrCh, pullerDone)
	defer func() {
		<-pullerDone
	}()

	lastRender := time.Now()

	for {
		select {
		case <-a.stopCh:
			return

		case sample := <-sampleCh:
			if !a.IsEnabled() {
				continue
			}
			events := a.orchestrator.Tick(sample, time.Now())
			a.dispatch(sample, events)

		case err := <-sampleErrCh:
			a.log.Warn().Err(err).Msg("landmark source error")

		case now := <-renderTicker.C:
			if !a.IsEnabled() {
				lastRender = now
				continue
			}
			dt := now.Sub(lastRender).Seconds()
			lastRender = now
			events := a.orchestrator.Render(dt)
			a.publishScene(events)
		}
	}
}

// runSamplePuller pulls samples from the Source at a cadence gated by
// motion: while idle it peeks frames from the camera directly at
// IdleIntervalMs to run through the motion detector, and once motion is
// seen it calls Source.Next() at DetectorMinIntervalMs. Both branches
// run sequentially in this one goroutine, so there is never a
// concurrent second reader of the camera — handinput.Source demands a
// single consumer, and the camera itself is not safe for concurrent
// ReadFrame calls either.
func (a *App) runSamplePuller(sampleCh chan<- handinput.Sample, errCh chan<- error, done chan<- struct{}) {
	defer close(done)

	idleInterval := time.Duration(a.config.IdleIntervalMs) * time.Millisecond
	if idleInterval <= 0 {
		idleInterval = 200 * time.Millisecond
	}
	activeInterval := time.Duration(a.config.DetectorMinIntervalMs) * time.Millisecond
	if activeInterval <= 0 {
		activeInterval = 32 * time.Millisecond
	}
	idleTimeout := time.Duration(a.config.IdleTimeoutMs) * time.Millisecond
	if idleTimeout <= 0 {
		idleTimeout = 2 * time.Second
	}

	active := false
	var lastMotion time.Time
	ticker := time.NewTicker(idleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
		}

		source := a.Source()
		if source == nil {
			continue
		}

		if !active {
			motion, ok := a.probeMotion()
			if !ok {
				continue
			}
			if motion {
				active = true
				lastMotion = time.Now()
				ticker.Reset(activeInterval)
			}
			continue
		}

		sample, err := source.Next()
		if err != nil {
			select {
			case errCh <- err:
			default:
			}
			continue
		}

		if sample.Present {
			lastMotion = time.Now()
		} else if time.Since(lastMotion) > idleTimeout {
			active = false
			ticker.Reset(idleInterval)
		}

		if cb := a.landmarkCallback(); cb != nil {
			cb(sample)
		}

		select {
		case sampleCh <- sample:
		default:
			// Detector tick is throttled to the render loop's pace; drop
			// a stale sample rather than block the puller.
			select {
			case <-sampleCh:
			default:
			}
			sampleCh <- sample
		}
	}
}

// probeMotion reads one frame directly from the camera and runs it
// through the motion detector, without touching the landmark Source.
func (a *App) probeMotion() (bool, bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.log.Warn().Err(err).Msg("idle motion probe failed to read frame")
		return false, false
	}
	defer frame.Close()

	detected, _ := a.motion.Detect(frame)
	return detected, true
}

// dispatch handles one detector tick's output: matching the sample
// against custom static gestures, recording the match, firing any bound
// action, and publishing the orchestrator's scene events.
func (a *App) dispatch(sample handinput.Sample, events []core.Event) {
	cb := a.customMatchCallback()
	for _, match := range a.customMatch.Match(sample) {
		a.recordMatch(match.Template.ID)
		a.executeAction(match.Template.ID, match.Template.Name)
		if cb != nil {
			cb(match)
		}
	}
	a.publishScene(events)
}

func (a *App) publishScene(events []core.Event) {
	if len(events) == 0 {
		return
	}
	if cb := a.sceneCallback(); cb != nil {
		cb(events)
	}
}
