package bench

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/skiprope/rope"
)

func TestRunWorkloads(t *testing.T) {
	for _, name := range Workloads() {
		t.Run(name, func(t *testing.T) {
			res, err := Run(context.Background(), Options{
				Workload: name,
				Ops:      500,
				Size:     1000,
				Runs:     2,
				Seed:     3,
				Rope:     []rope.Option{rope.WithMaxNodeBytes(32)},
			})
			require.NoError(t, err)
			assert.Equal(t, name, res.Workload)
			assert.Equal(t, 2, res.Runs)
			assert.LessOrEqual(t, res.Min, res.Avg)
			assert.LessOrEqual(t, res.Avg, res.Max)
			assert.Greater(t, res.Stats.Nodes, 1)
		})
	}
}

func TestRunFinalSize(t *testing.T) {
	res, err := Run(context.Background(), Options{Workload: Append, Ops: 100, Size: 10, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 110, res.Stats.Chars)
	assert.Equal(t, 1, res.Runs)

	res, err = Run(context.Background(), Options{Workload: RandomDelete, Ops: 10, Seed: 1})
	require.NoError(t, err)
	assert.Less(t, res.Stats.Chars, 50)
	assert.GreaterOrEqual(t, res.Stats.Chars, 0)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), Options{Workload: "sideways"})
	assert.ErrorIs(t, err, ErrUnknownWorkload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, Options{Workload: Mixed, Ops: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultOpsPerSec(t *testing.T) {
	assert.Zero(t, Result{Ops: 10}.OpsPerSec())
	assert.InDelta(t, 1000.0, Result{Ops: 10, Avg: 10 * time.Millisecond}.OpsPerSec(), 0.001)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, []Result{
		{Workload: Append, Runs: 1, Ops: 10, Avg: time.Millisecond, Min: time.Millisecond, Max: time.Millisecond},
		{Workload: Mixed, Runs: 3, Ops: 20, Avg: 2 * time.Millisecond},
	})
	out := buf.String()
	assert.Contains(t, out, "WORKLOAD")
	assert.Contains(t, out, "append")
	assert.Contains(t, out, "mixed")
	assert.Contains(t, out, "1.000")
	assert.Contains(t, out, "10000")
}
