package trace

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/dshills/skiprope/internal/logging"
	"github.com/dshills/skiprope/rope"
)

// ReplayOptions tunes Replay.
type ReplayOptions struct {
	// CheckEvery runs rope.Check after every n patches. Zero disables it.
	CheckEvery int

	// SkipVerify disables the final comparison against Trace.End.
	SkipVerify bool
}

// Result summarizes a replay.
type Result struct {
	RunID    string
	Patches  int
	Txns     int
	Inserted int
	Deleted  int
	Duration time.Duration
	Verified bool
	Stats    rope.Stats
}

// ctxPoll is how many patches run between context checks.
const ctxPoll = 256

// Replay applies every patch of t to r, which must already hold t.Start.
func Replay(ctx context.Context, r *rope.Rope, t *Trace, opts ReplayOptions) (Result, error) {
	res := Result{RunID: uuid.NewString(), Txns: t.Txns}
	log := logging.L.With("run", res.RunID)
	log.Debug("replay starting", "patches", len(t.Patches), "start_chars", r.CharCount())

	started := time.Now()
	for i, p := range t.Patches {
		if i%ctxPoll == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		if p.Pos > r.CharCount() || p.Del > r.CharCount()-p.Pos {
			return res, fmt.Errorf("%w: patch %d at %d deletes %d of %d chars",
				ErrPatchOutOfRange, i, p.Pos, p.Del, r.CharCount())
		}
		if p.Del > 0 {
			r.Delete(p.Pos, p.Del)
			res.Deleted += p.Del
		}
		if p.Ins != "" {
			if err := r.InsertString(p.Pos, p.Ins); err != nil {
				return res, fmt.Errorf("patch %d: %w", i, err)
			}
			res.Inserted += utf8.RuneCountInString(p.Ins)
		}
		res.Patches++

		if opts.CheckEvery > 0 && res.Patches%opts.CheckEvery == 0 {
			if err := r.Check(); err != nil {
				return res, fmt.Errorf("after patch %d: %w", i, err)
			}
		}
	}
	res.Duration = time.Since(started)
	res.Stats = r.Stats()

	if t.HasEnd && !opts.SkipVerify {
		if got := r.String(); got != t.End {
			return res, fmt.Errorf("%w: got %d chars, want %d",
				ErrContentMismatch, utf8.RuneCountInString(got), utf8.RuneCountInString(t.End))
		}
		res.Verified = true
	}

	log.Debug("replay finished", "patches", res.Patches, "duration", res.Duration, "chars", r.CharCount())
	return res, nil
}

// PatchesPerSecond returns the replay throughput.
func (res Result) PatchesPerSecond() float64 {
	if res.Duration <= 0 {
		return 0
	}
	return float64(res.Patches) / res.Duration.Seconds()
}

// JSON renders the result as a JSON report.
func (res Result) JSON() ([]byte, error) {
	fields := []struct {
		path  string
		value any
	}{
		{"run_id", res.RunID},
		{"patches", res.Patches},
		{"txns", res.Txns},
		{"inserted", res.Inserted},
		{"deleted", res.Deleted},
		{"duration_ms", float64(res.Duration.Microseconds()) / 1000},
		{"patches_per_sec", res.PatchesPerSecond()},
		{"verified", res.Verified},
		{"rope.chars", res.Stats.Chars},
		{"rope.bytes", res.Stats.Bytes},
		{"rope.nodes", res.Stats.Nodes},
		{"rope.levels", res.Stats.Levels},
		{"rope.fill", res.Stats.Fill},
	}

	out := []byte(`{}`)
	for _, f := range fields {
		var err error
		if out, err = sjson.SetBytes(out, f.path, f.value); err != nil {
			return nil, fmt.Errorf("report field %s: %w", f.path, err)
		}
	}
	return out, nil
}
