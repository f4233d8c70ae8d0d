package unit

import (
	"math"

	"github.com/gordonklaus/kiwi/dsp"
)

// An AttackReleaseEnv rises exponentially towards 1 while attacking and
// decays towards 0 once released.  Times are in seconds to come within 1%.
type AttackReleaseEnv struct {
	sampleRate              float64
	attackTime, releaseTime float64
	up, down                float64
	release                 bool
	x                       float64
}

func NewAttackReleaseEnv(attackTime, releaseTime float64) *AttackReleaseEnv {
	return &AttackReleaseEnv{attackTime: attackTime, releaseTime: releaseTime, release: true}
}

func (e *AttackReleaseEnv) Prepare(p dsp.Params) {
	e.sampleRate = p.SampleRate
	e.SetAttackTime(e.attackTime)
	e.SetReleaseTime(e.releaseTime)
}

func (e *AttackReleaseEnv) SetAttackTime(t float64) {
	e.attackTime = t
	e.up = decay(e.sampleRate, t)
}

func (e *AttackReleaseEnv) SetReleaseTime(t float64) {
	e.releaseTime = t
	e.down = decay(e.sampleRate, t)
}

func decay(sampleRate, t float64) float64 {
	if t <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Pow(.01, 1/(sampleRate*t))
}

func (e *AttackReleaseEnv) Attack()  { e.release = false }
func (e *AttackReleaseEnv) Release() { e.release = true }

func (e *AttackReleaseEnv) Sing() float64 {
	if e.release {
		e.x *= e.down
	} else {
		e.x = 1 - (1-e.x)*e.up
	}
	return e.x
}

func (e *AttackReleaseEnv) Done() bool {
	return e.release && e.x < .0001
}
