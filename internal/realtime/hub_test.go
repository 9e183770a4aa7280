package realtime_test

import (
	"testing"
	"time"

	"github.com/civicworks/grievance_redressal_app/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscribedTopicsOnly(t *testing.T) {
	hub := realtime.NewHub()

	grievanceSub := hub.Subscribe([]string{realtime.TopicGrievances}, 4)
	signupSub := hub.Subscribe([]string{realtime.TopicWorkerSignups}, 4)
	defer hub.Unsubscribe(signupSub)

	hub.Publish(realtime.Event{
		Topic:  realtime.TopicGrievances,
		Action: realtime.ActionCreated,
	})

	select {
	case ev := <-grievanceSub.C:
		assert.Equal(t, realtime.TopicGrievances, ev.Topic)
		assert.Equal(t, realtime.ActionCreated, ev.Action)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected event on grievances subscriber")
	}

	select {
	case ev := <-signupSub.C:
		t.Fatalf("unexpected event on signups subscriber: %+v", ev)
	default:
	}

	hub.Unsubscribe(grievanceSub)
	assert.Equal(t, 0, hub.SubscriberCount(realtime.TopicGrievances))
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe([]string{realtime.TopicWorkerReqs}, 1)

	hub.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe([]string{realtime.TopicGrievances}, 1)
	defer hub.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(realtime.Event{Topic: realtime.TopicGrievances, Action: realtime.ActionUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on slow subscriber")
	}

	// Exactly the buffered event survives.
	require.Len(t, sub.C, 1)
}

func TestHub_PerGrievanceTopic(t *testing.T) {
	hub := realtime.NewHub()
	sub := hub.Subscribe([]string{realtime.GrievanceTopic("g-1")}, 4)
	defer hub.Unsubscribe(sub)

	hub.Publish(realtime.Event{Topic: realtime.GrievanceTopic("g-2"), Action: realtime.ActionUpdated})
	hub.Publish(realtime.Event{Topic: realtime.GrievanceTopic("g-1"), Action: realtime.ActionUpdated})

	select {
	case ev := <-sub.C:
		assert.Equal(t, "grievances/g-1", ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("expected event for watched grievance")
	}
	assert.Empty(t, sub.C)
}
