// Package progress turns asset loading lifecycle events into overlay UI state.
package progress

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/vrmviewer/internal/loading"
)

// CompleteMessage is shown once every item has loaded.
const CompleteMessage = "Loading Complete!"

// State is the reporter's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateFading
	StateRemoved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateFading:
		return "fading"
	case StateRemoved:
		return "removed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options controls fade timing.
type Options struct {
	FadeDelay    time.Duration // Time from completion until the container is removed
	FadeDuration time.Duration // Length of the opacity transition
	Log          *zap.Logger
}

// Reporter mirrors lifecycle events into Elements. It is driven from the
// render thread and is not safe for concurrent use.
type Reporter struct {
	elems Elements
	opts  Options
	log   *zap.Logger

	state      State
	completeAt time.Time
}

// NewReporter binds a reporter to elems, failing fast if any element is absent.
func NewReporter(elems Elements, opts Options) (*Reporter, error) {
	if err := elems.validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{elems: elems, opts: opts, log: log}, nil
}

// Percent returns 100*loaded/total clamped to [0, 100]; zero when total is zero.
func Percent(loaded, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := 100 * float64(loaded) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CurrentItemText formats the "current item" label.
func CurrentItemText(url string, loaded, total int) string {
	return fmt.Sprintf("Loading asset: %s (%d/%d)", url, loaded, total)
}

// FailedText formats the failure label.
func FailedText(err error) string {
	if err == nil {
		return "Loading Failed!"
	}
	return fmt.Sprintf("Loading Failed: %v", err)
}

// Handle applies one lifecycle event at time now.
func (r *Reporter) Handle(ev loading.Event, now time.Time) {
	switch ev.Kind {
	case loading.KindStart:
		r.log.Info("started loading file", zap.String("url", ev.URL))
		if r.state == StateIdle {
			r.state = StateLoading
		}
		r.elems.CurrentText.Value = CurrentItemText(ev.URL, ev.Loaded, ev.Total)

	case loading.KindProgress:
		r.log.Info("loading file",
			zap.String("url", ev.URL),
			zap.Int("loaded", ev.Loaded),
			zap.Int("total", ev.Total))
		r.elems.Bar.Value = Percent(ev.Loaded, ev.Total)
		r.elems.CurrentText.Value = CurrentItemText(ev.URL, ev.Loaded, ev.Total)

	case loading.KindBytes:
		if ev.BytesTotal > 0 {
			r.log.Debug("loading model",
				zap.String("url", ev.URL),
				zap.Float64("percent", 100*float64(ev.BytesLoaded)/float64(ev.BytesTotal)))
		} else {
			r.log.Debug("loading model", zap.String("url", ev.URL), zap.Int64("bytes", ev.BytesLoaded))
		}

	case loading.KindComplete:
		if r.state == StateFailed || r.state == StateFading || r.state == StateRemoved {
			return
		}
		r.log.Info("loading complete")
		r.elems.PercentText.Value = CompleteMessage
		r.state = StateFading
		r.completeAt = now
		r.Update(now)

	case loading.KindError:
		r.log.Error("failed to load item", zap.String("url", ev.URL), zap.Error(ev.Err))

	case loading.KindFailed:
		if r.state == StateRemoved {
			return
		}
		r.state = StateFailed
		r.elems.PercentText.Value = FailedText(ev.Err)
		r.elems.Container.Opacity = 1
		r.elems.Container.Failed = true
	}
}

// Update advances the fade-out and removes the container once the delay elapsed.
func (r *Reporter) Update(now time.Time) {
	if r.state != StateFading {
		return
	}

	elapsed := now.Sub(r.completeAt)
	if elapsed >= r.opts.FadeDelay {
		r.elems.Container.Opacity = 0
		r.elems.Container.Removed = true
		r.state = StateRemoved
		return
	}

	if r.opts.FadeDuration <= 0 || elapsed >= r.opts.FadeDuration {
		r.elems.Container.Opacity = 0
		return
	}
	r.elems.Container.Opacity = 1 - float32(elapsed)/float32(r.opts.FadeDuration)
}

// State returns the reporter state.
func (r *Reporter) State() State {
	return r.state
}

// Elements returns the bound elements.
func (r *Reporter) Elements() Elements {
	return r.elems
}
