package main

import (
	"sync"
	"time"
)

// Clock supplies monotonic-ish timestamps so playback math can run against
// synthetic time in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler delivers recurring ticks, one per display frame. Cancel stops
// future ticks for the token.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// tickerScheduler drives callbacks off a wall-clock ticker at a fixed rate.
type tickerScheduler struct {
	interval time.Duration
}

func newTickerScheduler(fps float64) *tickerScheduler {
	if fps <= 0 {
		fps = 30
	}
	return &tickerScheduler{interval: time.Duration(float64(time.Second) / fps)}
}

func (ts *tickerScheduler) Schedule(fn func()) func() {
	ticker := time.NewTicker(ts.interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	// Cancel may race itself: the tick goroutine self-pauses at the end of
	// playback while the owner pauses too.
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// Player turns scheduler ticks into progress fractions over a fixed
// animation duration and hands each one to the render callback. Pausing
// stops scheduling; resuming re-anchors the start reference so progress
// continues where it left off.
type Player struct {
	clock    Clock
	sched    Scheduler
	duration time.Duration
	onFrame  func(progress float64)

	cancel   func()
	startRef time.Time
	consumed time.Duration
	playing  bool
}

func newPlayer(clock Clock, sched Scheduler, duration time.Duration, onFrame func(float64)) *Player {
	return &Player{clock: clock, sched: sched, duration: duration, onFrame: onFrame}
}

func (p *Player) Play() {
	if p.playing || p.duration <= 0 {
		return
	}
	p.playing = true
	p.startRef = p.clock.Now()
	p.cancel = p.sched.Schedule(p.tick)
}

func (p *Player) Pause() {
	if !p.playing {
		return
	}
	p.consumed += p.clock.Now().Sub(p.startRef)
	p.playing = false
	p.cancel()
}

// Seek rewinds or advances playback to the given fraction.
func (p *Player) Seek(progress float64) {
	p.consumed = time.Duration(clamp(progress, 0, 1) * float64(p.duration))
	if p.playing {
		p.startRef = p.clock.Now()
	}
}

func (p *Player) Playing() bool { return p.playing }

// Progress is the current playback position regardless of play state.
func (p *Player) Progress() float64 {
	elapsed := p.consumed
	if p.playing {
		elapsed += p.clock.Now().Sub(p.startRef)
	}
	return clamp(elapsed.Seconds()/p.duration.Seconds(), 0, 1)
}

func (p *Player) tick() {
	progress := p.Progress()
	p.onFrame(progress)
	if progress >= 1 {
		p.Pause()
	}
}
