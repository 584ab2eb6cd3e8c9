package improve

import (
	"math/rand"
	"time"

	"github.com/matthieukhl/reword/internal/editor"
)

// SpeedProfile bounds the per-chunk pacing delay. Invariant: 0 <= Min <= Max.
type SpeedProfile struct {
	Min time.Duration
	Max time.Duration
}

// delay draws a uniform random duration from [Min, Max].
func (p SpeedProfile) delay() time.Duration {
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + time.Duration(rand.Int63n(int64(p.Max-p.Min)))
}

var speedProfiles = map[string]SpeedProfile{
	"fast":   {Min: 10 * time.Millisecond, Max: 40 * time.Millisecond},
	"medium": {Min: 30 * time.Millisecond, Max: 90 * time.Millisecond},
	"slow":   {Min: 80 * time.Millisecond, Max: 200 * time.Millisecond},
}

// ProfileByName returns the named speed profile, falling back to medium.
func ProfileByName(name string) SpeedProfile {
	if p, ok := speedProfiles[name]; ok {
		return p
	}
	return speedProfiles["medium"]
}

// chunkSize is how many runes each paced mutation inserts. Two characters
// per chunk balances visual smoothness against mutation overhead.
const chunkSize = 2

// Scheduler materializes generated text into a buffer, either in a single
// mutation or paced chunk by chunk for a typewriter effect.
type Scheduler struct {
	sleep func(time.Duration)
}

func NewScheduler() *Scheduler {
	return &Scheduler{sleep: time.Sleep}
}

// Materialize writes text into buf starting at start and returns the
// position just past the written text. When paced, the text goes in as
// fixed-size chunks with a random delay from profile between chunks; the
// write cursor only ever moves forward. Must not run concurrently with any
// other mutation of the same region.
func (s *Scheduler) Materialize(buf editor.Buffer, text string, start editor.Pos, paced bool, profile SpeedProfile) editor.Pos {
	if !paced {
		buf.Insert(start, text)
		return editor.Advance(start, text)
	}

	cursor := start
	runes := []rune(text)
	for i := 0; i < len(runes); i += chunkSize {
		end := min(i+chunkSize, len(runes))
		chunk := string(runes[i:end])
		buf.Insert(cursor, chunk)
		cursor = editor.Advance(cursor, chunk)
		if end < len(runes) {
			s.sleep(profile.delay())
		}
	}
	return cursor
}
