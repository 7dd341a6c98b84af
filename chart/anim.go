package chart

import "time"

// anim is a retargetable tween; retargeting starts from the current value so
// interrupted transitions never jump
type anim struct {
	from, to float64
	start    time.Time
	dur      time.Duration
}

func newAnim(v float64) anim {
	return anim{from: v, to: v}
}

// value returns the eased value at now
func (a *anim) value(now time.Time) float64 {
	if a.dur <= 0 {
		return a.to
	}
	t := float64(now.Sub(a.start)) / float64(a.dur)
	if t >= 1 {
		return a.to
	}
	if t <= 0 {
		return a.from
	}
	return a.from + (a.to-a.from)*easeCubicInOut(t)
}

// retarget animates from the current value toward to
func (a *anim) retarget(to float64, now time.Time, dur time.Duration) {
	cur := a.value(now)
	a.from = cur
	a.to = to
	a.start = now
	a.dur = dur
}

// set jumps without transition
func (a *anim) set(v float64) {
	a.from = v
	a.to = v
	a.dur = 0
}

// running reports whether the tween is still in flight at now
func (a *anim) running(now time.Time) bool {
	return a.dur > 0 && now.Before(a.start.Add(a.dur)) && a.from != a.to
}

func easeCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := 2*t - 2
	return 0.5*f*f*f + 1
}
