package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToTopic(t *testing.T) {
	hub := NewHub()

	jobs, cleanupJobs := hub.Subscribe(TopicReportJobs)
	defer cleanupJobs()
	other, cleanupOther := hub.Subscribe("other")
	defer cleanupOther()

	assert.Equal(t, 1, hub.SubscriberCount(TopicReportJobs))
	assert.Equal(t, 2, hub.TotalSubscribers())

	hub.Publish(Event{Topic: TopicReportJobs, Event: "job.started", Data: "x"})

	select {
	case ev := <-jobs:
		assert.Equal(t, "job.started", ev.Event)
	default:
		t.Fatal("expected event on report_jobs topic")
	}
	assert.Empty(t, other)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(TopicReportJobs)

	cleanup()
	cleanup()

	_, open := <-ch
	require.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_PublishDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe(TopicReportJobs)
	defer cleanup()

	for i := 0; i < 100; i++ {
		hub.Publish(Event{Topic: TopicReportJobs, Event: "job.progress"})
	}
}
