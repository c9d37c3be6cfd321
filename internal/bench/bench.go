// Package bench runs synthetic editing workloads against ropes and renders
// the timings as a table.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/dshills/skiprope/internal/logging"
	"github.com/dshills/skiprope/rope"
)

// Workload names.
const (
	RandomInsert = "random-insert"
	RandomDelete = "random-delete"
	Append       = "append"
	Mixed        = "mixed"
)

// ErrUnknownWorkload is returned for workload names Run does not know.
var ErrUnknownWorkload = errors.New("unknown workload")

// Workloads lists the workload names in display order.
func Workloads() []string {
	return []string{RandomInsert, RandomDelete, Append, Mixed}
}

// Options controls a benchmark run.
type Options struct {
	Workload string

	// Ops is the number of edits per run.
	Ops int

	// Size is the number of characters in the starting document.
	Size int

	// Runs repeats the workload on fresh ropes.
	Runs int

	Seed int64

	// Rope options applied to every rope the run builds.
	Rope []rope.Option
}

// Result holds the timings of one workload.
type Result struct {
	Workload string
	Runs     int
	Ops      int
	Avg      time.Duration
	Min      time.Duration
	Max      time.Duration

	// Stats describes the rope left by the last run.
	Stats rope.Stats
}

// OpsPerSec returns the average throughput.
func (r Result) OpsPerSec() float64 {
	if r.Avg <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Avg.Seconds()
}

// alphabet mixes one to four byte sequences.
var alphabet = []rune("abcdefghijklmnopqrstuvwxyz ,.\néüß日本語🎉")

func randomText(rng *rand.Rand, n int) string {
	rs := make([]rune, n)
	for i := range rs {
		rs[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(rs)
}

// Run executes opts.Runs repetitions of the workload.
func Run(ctx context.Context, opts Options) (Result, error) {
	if !slices.Contains(Workloads(), opts.Workload) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownWorkload, opts.Workload)
	}
	runs := max(opts.Runs, 1)
	res := Result{Workload: opts.Workload, Runs: runs, Ops: opts.Ops}

	var total time.Duration
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rng := rand.New(rand.NewSource(opts.Seed + int64(i)))
		elapsed, stats, err := runOnce(rng, opts)
		if err != nil {
			return res, fmt.Errorf("%s run %d: %w", opts.Workload, i, err)
		}
		total += elapsed
		if i == 0 || elapsed < res.Min {
			res.Min = elapsed
		}
		res.Max = max(res.Max, elapsed)
		res.Stats = stats
	}
	res.Avg = total / time.Duration(runs)

	logging.L.Debug("workload finished", "workload", res.Workload, "runs", runs, "avg", res.Avg)
	return res, nil
}

func runOnce(rng *rand.Rand, opts Options) (time.Duration, rope.Stats, error) {
	size := opts.Size
	if opts.Workload == RandomDelete {
		// Enough text for every delete to remove something.
		size = max(size, opts.Ops*5)
	}

	r, err := rope.FromString(randomText(rng, size), opts.Rope...)
	if err != nil {
		return 0, rope.Stats{}, err
	}
	defer r.Close()

	// Pre-generate edits so only rope work is timed.
	type edit struct {
		pos, del int
		ins      string
	}
	edits := make([]edit, opts.Ops)
	chars := r.CharCount()
	for i := range edits {
		var e edit
		switch opts.Workload {
		case RandomInsert:
			e.pos = rng.Intn(chars + 1)
			e.ins = randomText(rng, 1+rng.Intn(10))
		case RandomDelete:
			if chars > 0 {
				e.pos = rng.Intn(chars)
				e.del = min(1+rng.Intn(5), chars-e.pos)
			}
		case Append:
			e.pos = chars
			e.ins = randomText(rng, 1)
		case Mixed:
			if chars > 0 && rng.Intn(2) == 0 {
				e.pos = rng.Intn(chars)
				e.del = min(1+rng.Intn(10), chars-e.pos)
			} else {
				e.pos = rng.Intn(chars + 1)
				e.ins = randomText(rng, 1+rng.Intn(10))
			}
		}
		chars += len([]rune(e.ins)) - e.del
		edits[i] = e
	}

	started := time.Now()
	for _, e := range edits {
		if e.del > 0 {
			r.Delete(e.pos, e.del)
		}
		if e.ins != "" {
			if err := r.InsertString(e.pos, e.ins); err != nil {
				return 0, rope.Stats{}, err
			}
		}
	}
	elapsed := time.Since(started)

	if err := r.Check(); err != nil {
		return 0, rope.Stats{}, err
	}
	return elapsed, r.Stats(), nil
}

func ms(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64)
}

// Render writes results as a table.
func Render(w io.Writer, results []Result) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Workload,
			strconv.Itoa(r.Runs),
			strconv.Itoa(r.Ops),
			ms(r.Avg),
			ms(r.Min),
			ms(r.Max),
			strconv.FormatFloat(r.OpsPerSec(), 'f', 0, 64),
			strconv.Itoa(r.Stats.Nodes),
			strconv.FormatFloat(r.Stats.Fill*100, 'f', 1, 64),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Workload", "Runs", "Ops", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "Nodes", "Fill%"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}
