// FILE: lixenwraith/logship/batch_test.go
package logship

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyRecord(body string) Record {
	return Record{Body: body}
}

func TestIntakeQueue(t *testing.T) {
	var q intakeQueue

	assert.Equal(t, 1, q.push(bodyRecord("a")))
	assert.Equal(t, 2, q.push(bodyRecord("b")))
	assert.Equal(t, 2, q.len())

	drained := q.drainAll()
	require.Len(t, drained, 2)
	assert.Equal(t, "a", drained[0].Body)
	assert.Equal(t, "b", drained[1].Body)

	assert.Zero(t, q.len())
	assert.Empty(t, q.drainAll())
}

func TestIntakeQueueConcurrentPushDrain(t *testing.T) {
	var q intakeQueue
	const producers = 4
	const perProducer = 1000

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.push(bodyRecord(fmt.Sprintf("%d-%d", p, i)))
			}
		}(p)
	}

	done := make(chan struct{})
	var drained []Record
	go func() {
		defer close(done)
		for len(drained) < producers*perProducer {
			drained = append(drained, q.drainAll()...)
		}
	}()

	wg.Wait()
	<-done

	seen := make(map[string]bool, len(drained))
	for _, r := range drained {
		assert.False(t, seen[r.Body], "duplicate %s", r.Body)
		seen[r.Body] = true
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestAccumulatorCollect(t *testing.T) {
	t.Run("below threshold holds records", func(t *testing.T) {
		var q intakeQueue
		var a accumulator

		q.push(bodyRecord("1"))
		q.push(bodyRecord("2"))

		assert.Nil(t, a.collect(&q, 3, false))
		assert.Equal(t, 2, a.size())
		assert.Zero(t, q.len())
	})

	t.Run("threshold reached swaps out", func(t *testing.T) {
		var q intakeQueue
		var a accumulator

		q.push(bodyRecord("1"))
		a.collect(&q, 3, false)
		q.push(bodyRecord("2"))
		q.push(bodyRecord("3"))

		out := a.collect(&q, 3, false)
		require.Len(t, out, 3)
		assert.Equal(t, []string{"1", "2", "3"}, []string{out[0].Body, out[1].Body, out[2].Body})
		assert.Zero(t, a.size())
	})

	t.Run("force flushes partial buffer", func(t *testing.T) {
		var q intakeQueue
		var a accumulator

		q.push(bodyRecord("only"))
		out := a.collect(&q, 100, true)
		require.Len(t, out, 1)
		assert.Zero(t, a.size())
	})

	t.Run("force on empty returns nil", func(t *testing.T) {
		var q intakeQueue
		var a accumulator

		assert.Nil(t, a.collect(&q, 1, true))
	})

	t.Run("oversized batch is not split", func(t *testing.T) {
		var q intakeQueue
		var a accumulator

		for i := 0; i < 25; i++ {
			q.push(bodyRecord(fmt.Sprint(i)))
		}
		out := a.collect(&q, 10, false)
		assert.Len(t, out, 25)
	})
}

func TestAccumulatorShutdownFlag(t *testing.T) {
	var a accumulator

	assert.False(t, a.isShuttingDown())
	assert.True(t, a.beginShutdown())
	assert.False(t, a.beginShutdown())
	assert.True(t, a.isShuttingDown())
}
