package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailChainsEvents(t *testing.T) {
	trail := NewTrail()

	first := trail.Record(EventTransaction, "AC001 20240505-01 D 100.00")
	second := trail.Record(EventRule, "20240101 RULE01 5.00%")

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, first.Hash, second.PrevHash)
	assert.True(t, Verify(trail.Events()))
}

func TestVerifyDetectsTampering(t *testing.T) {
	trail := NewTrail()
	trail.Record(EventTransaction, "AC001 20240505-01 D 100.00")
	trail.Record(EventTransaction, "AC001 20240506-01 W 40.00")

	events := trail.Events()
	events[0].Detail = "AC001 20240505-01 D 999.00"
	assert.False(t, Verify(events))
}

func TestVerifyDetectsBrokenChain(t *testing.T) {
	trail := NewTrail()
	trail.Record(EventTransaction, "a")
	trail.Record(EventTransaction, "b")
	trail.Record(EventTransaction, "c")

	events := trail.Events()
	require.Len(t, events, 3)
	assert.True(t, Verify(events[:2]))
	// Dropping a middle event breaks the links around it.
	assert.False(t, Verify([]Event{events[0], events[2]}))
}

func TestVerifyEmptyChain(t *testing.T) {
	assert.True(t, Verify(nil))
}
