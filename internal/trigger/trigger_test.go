package trigger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/sensorctl/internal/errors"
	"codeberg.org/mutker/sensorctl/internal/trigger"
)

func countingCallback(count *int) trigger.Callback {
	return func(_ string, _ float64) {
		*count++
	}
}

func TestContinuousUpperTrigger(t *testing.T) {
	r := trigger.NewRegistry()
	count := 0
	require.NoError(t, r.Set("overheat", trigger.Upper, 100, countingCallback(&count), false))

	assert.Equal(t, []string{"overheat"}, r.Exec(100), "value at threshold fires")
	assert.Equal(t, []string{"overheat"}, r.Exec(150), "continuous trigger fires on every active call")
	assert.Empty(t, r.Exec(99))
	assert.Equal(t, 2, count)
}

func TestContinuousLowerTrigger(t *testing.T) {
	r := trigger.NewRegistry()
	count := 0
	require.NoError(t, r.Set("undervolt", trigger.Lower, 10, countingCallback(&count), false))

	assert.Equal(t, []string{"undervolt"}, r.Exec(10))
	assert.Equal(t, []string{"undervolt"}, r.Exec(5))
	assert.Empty(t, r.Exec(11))
	assert.Equal(t, 2, count)
}

func TestOneTimeUpperRisingEdge(t *testing.T) {
	r := trigger.NewRegistry()
	count := 0
	require.NoError(t, r.Set("alarm", trigger.Upper, 100, countingCallback(&count), true))

	fired := make([]int, 0, 5)
	for i, value := range []float64{50, 100, 120, 90, 110} {
		if len(r.Exec(value)) > 0 {
			fired = append(fired, i+1)
		}
	}

	assert.Equal(t, []int{2, 5}, fired, "one-time trigger fires only on rising edges")
	assert.Equal(t, 2, count)
}

func TestOneTimeLowerRisingEdge(t *testing.T) {
	r := trigger.NewRegistry()
	count := 0
	require.NoError(t, r.Set("freeze", trigger.Lower, 0, countingCallback(&count), true))

	r.Exec(5)
	assert.Equal(t, []string{"freeze"}, r.Exec(-1))
	assert.Empty(t, r.Exec(-2), "still active, no new edge")
	r.Exec(3)
	assert.Equal(t, []string{"freeze"}, r.Exec(0), "fires again after deactivating")
}

func TestCallbackAppendAndOrder(t *testing.T) {
	r := trigger.NewRegistry()
	var order []string
	named := func(id string) trigger.Callback {
		return func(_ string, _ float64) {
			order = append(order, id)
		}
	}

	// Same kind/threshold/one-time appends instead of replacing.
	require.NoError(t, r.Set("hot", trigger.Upper, 50, named("first"), false))
	require.NoError(t, r.Set("hot", trigger.Upper, 50, named("second"), false))
	require.NoError(t, r.AddCallback("hot", named("third")))

	r.Exec(60)

	assert.Equal(t, []string{"first", "second", "third"}, order, "callbacks run in registration order")

	rec, err := r.Get("hot")
	require.NoError(t, err)
	assert.Len(t, rec.Callbacks, 3)
}

func TestSetReplacesChangedRecord(t *testing.T) {
	r := trigger.NewRegistry()
	oldCount, newCount := 0, 0
	require.NoError(t, r.Set("alarm", trigger.Upper, 100, countingCallback(&oldCount), true))

	// Activate so the edge state is set, then replace with a new threshold.
	r.Exec(150)
	require.Equal(t, 1, oldCount)

	require.NoError(t, r.Set("alarm", trigger.Upper, 200, countingCallback(&newCount), true))

	assert.Equal(t, []string{"alarm"}, r.Exec(250), "replacement resets the edge state")
	assert.Equal(t, 1, oldCount, "replaced callback no longer runs")
	assert.Equal(t, 1, newCount)
}

func TestExecRegistrationOrder(t *testing.T) {
	r := trigger.NewRegistry()
	cb := func(_ string, _ float64) {}
	require.NoError(t, r.Set("c", trigger.Upper, 0, cb, false))
	require.NoError(t, r.Set("a", trigger.Upper, 0, cb, false))
	require.NoError(t, r.Set("b", trigger.Upper, 0, cb, false))

	assert.Equal(t, []string{"c", "a", "b"}, r.Exec(1), "evaluation follows registration order")
}

func TestInvalidRegistration(t *testing.T) {
	r := trigger.NewRegistry()
	cb := func(_ string, _ float64) {}

	err := r.Set("bad", trigger.Kind(7), 0, cb, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, trigger.ErrInvalidKind))

	err = r.Set("", trigger.Upper, 0, cb, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, trigger.ErrInvalidName))

	err = r.Set("nilcb", trigger.Upper, 0, nil, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, trigger.ErrNilCallback))
}

func TestDeleteIdempotent(t *testing.T) {
	r := trigger.NewRegistry()
	cb := func(_ string, _ float64) {}
	require.NoError(t, r.Set("gone", trigger.Upper, 0, cb, false))

	r.Delete("gone")
	assert.Empty(t, r.Exec(1), "deleted trigger is no longer considered")
	assert.Equal(t, 0, r.Len())

	r.Delete("gone")
	r.Delete("never-existed")
}

func TestGetAndSnapshot(t *testing.T) {
	r := trigger.NewRegistry()
	cb := func(_ string, _ float64) {}
	require.NoError(t, r.Set("hot", trigger.Upper, 80, cb, true))
	require.NoError(t, r.Set("cold", trigger.Lower, 5, cb, false))

	rec, err := r.Get("hot")
	require.NoError(t, err)
	assert.Equal(t, trigger.Upper, rec.Kind)
	assert.Equal(t, 80.0, rec.Threshold)
	assert.True(t, rec.OneTime)
	assert.False(t, rec.Active)

	r.Exec(90)
	rec, err = r.Get("hot")
	require.NoError(t, err)
	assert.True(t, rec.Active, "edge state is visible in the snapshot")

	_, err = r.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, trigger.ErrNotFound))

	snapshot := r.Snapshot()
	assert.Len(t, snapshot, 2)

	r.DeleteAll()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Exec(100))
}

func TestPanickingCallbackIsolation(t *testing.T) {
	r := trigger.NewRegistry()
	survived := 0
	require.NoError(t, r.Set("explosive", trigger.Upper, 0, func(_ string, _ float64) {
		panic("callback failure")
	}, false))
	require.NoError(t, r.AddCallback("explosive", countingCallback(&survived)))
	require.NoError(t, r.Set("sibling", trigger.Upper, 0, countingCallback(&survived), false))

	fired := r.Exec(1)

	assert.Equal(t, []string{"explosive", "sibling"}, fired)
	assert.Equal(t, 2, survived, "a panicking callback must not abort siblings")
}
