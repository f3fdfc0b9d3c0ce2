package broker

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackedMessage(key string) *Message {
	msg := NewTextMessage("tracked")
	msg.CorrelationID = key
	return msg
}

func TestUnackedAddAndRemove(t *testing.T) {
	unacked := NewUnackedList()
	unacked.Add(newTrackedMessage("1"))
	unacked.Add(newTrackedMessage("2"))
	unacked.Add(newTrackedMessage("3"))

	require.Equal(t, 3, unacked.Len())
	assert.Equal(t, "[1, 2, 3]", unacked.String())

	err := unacked.Remove("2")
	require.NoError(t, err, "remove middle entry")
	assert.Equal(t, "[1, 3]", unacked.String())

	err = unacked.Remove("2")
	assert.Error(t, err, "removing an untracked key should error")
}

func TestUnackedSnapshotIsIndependent(t *testing.T) {
	unacked := NewUnackedList()
	unacked.Add(newTrackedMessage("1"))

	snapshot := unacked.Get()
	require.Len(t, snapshot, 1)

	err := unacked.Remove("1")
	require.NoError(t, err)

	// The snapshot keeps the message even after removal.
	assert.Len(t, snapshot, 1)
	assert.Equal(t, "1", snapshot[0].CorrelationID)
	assert.Equal(t, 0, unacked.Len())
}

func TestUnackedConcurrentAccess(t *testing.T) {
	unacked := NewUnackedList()

	// Mimic a publish loop racing a confirm callback.
	work := new(sync.WaitGroup)
	work.Add(2)

	go func() {
		defer work.Done()
		for i := 0; i < 100; i++ {
			unacked.Add(newTrackedMessage(fmt.Sprint(i)))
		}
	}()

	go func() {
		defer work.Done()
		removed := 0
		for removed < 100 {
			if unacked.Remove(fmt.Sprint(removed)) == nil {
				removed++
			}
		}
	}()

	work.Wait()
	assert.Equal(t, 0, unacked.Len(), "every add should be matched by a remove")
}
