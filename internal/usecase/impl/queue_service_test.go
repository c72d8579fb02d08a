package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"lineless/internal/domain/entity"
	domainerrors "lineless/internal/domain/errors"
	"lineless/internal/domain/service"
	"lineless/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueService_Advance_FirstCallPromotesHeadWithoutServing(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	first := env.book(t, business.ID, "client-a")
	env.book(t, business.ID, "client-b")
	env.book(t, business.ID, "client-c")

	// No appointment is flagged CURRENT yet: the head is promoted, nobody
	// is served. PENDING never jumps straight to SERVED.
	result, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	assert.False(t, result.NoOp)
	assert.Nil(t, result.Served)
	require.NotNil(t, result.Current)
	assert.Equal(t, int64(1), result.Current.QueueNumber)
	assert.Equal(t, entity.StatusCurrent, result.Current.Status)
	assert.Equal(t, int64(1), result.CurrentToken)
	assert.False(t, result.Drained)

	stored, err := env.businessRepo.FindBusinessByID(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.CurrentToken)

	active, err := env.appointmentRepo.FindActiveByBusiness(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, entity.StatusCurrent, active[0].Status)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, entity.StatusPending, active[1].Status)
	assert.Equal(t, entity.StatusPending, active[2].Status)

	calls := env.notifier.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "client-a", calls[0].ClientUserID)
	assert.Equal(t, int64(1), calls[0].QueueNumber)
}

func TestQueueService_Advance_ServesCurrentAndPromotesNext(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	env.book(t, business.ID, "client-a")
	env.book(t, business.ID, "client-b")
	env.book(t, business.ID, "client-c")

	_, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	result, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	require.NotNil(t, result.Served)
	assert.Equal(t, int64(1), result.Served.QueueNumber)
	assert.Equal(t, entity.StatusServed, result.Served.Status)
	require.NotNil(t, result.Current)
	assert.Equal(t, int64(2), result.Current.QueueNumber)
	assert.Equal(t, entity.StatusCurrent, result.Current.Status)
	assert.Equal(t, int64(2), result.CurrentToken)
	assert.False(t, result.Drained)

	stored, err := env.businessRepo.FindBusinessByID(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.CurrentToken)

	calls := env.notifier.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "client-b", calls[1].ClientUserID)
	assert.Equal(t, int64(2), calls[1].QueueNumber)
	assert.Equal(t, business.Name, calls[1].BusinessName)
}

func TestQueueService_Advance_TokensAdvanceMonotonically(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.book(t, business.ID, "client")
	}

	// First call promotes the head, the next four each serve one and
	// promote the next.
	last := int64(0)
	for i := 0; i < 5; i++ {
		result, err := env.queue.Advance(ctx, "provider-1", business.ID)
		require.NoError(t, err)
		require.NotNil(t, result.Current)
		assert.Greater(t, result.CurrentToken, last)
		last = result.CurrentToken
	}

	// Serving the last one drains the queue and clears the token.
	result, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	assert.True(t, result.Drained)
	assert.Nil(t, result.Current)
	assert.Equal(t, int64(0), result.CurrentToken)
}

func TestQueueService_Advance_EmptyQueueIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	result, err := env.queue.Advance(context.Background(), "provider-1", business.ID)
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Nil(t, result.Served)
	assert.Empty(t, env.notifier.Calls())
	assert.Empty(t, env.publisher.Events())
}

func TestQueueService_Advance_DrainPublishesDrainedEvent(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	env.book(t, business.ID, "client-a")

	// First call promotes the lone appointment, the second serves it and
	// drains the queue.
	result, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	assert.False(t, result.Drained)
	require.NotNil(t, result.Current)

	result, err = env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	assert.True(t, result.Drained)
	assert.Equal(t, int64(0), result.CurrentToken)
	assert.Len(t, env.notifier.Calls(), 1)
	assert.Contains(t, env.publisher.EventTypes(), service.EventQueueDrained)
}

func TestQueueService_Advance_NormalizesExtraCurrents(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	first := env.book(t, business.ID, "client-a")
	second := env.book(t, business.ID, "client-b")
	third := env.book(t, business.ID, "client-c")

	// Corrupt the queue: two appointments flagged CURRENT at once.
	require.NoError(t, env.appointmentRepo.UpdateAppointmentStatus(ctx, first.ID, entity.StatusCurrent))
	require.NoError(t, env.appointmentRepo.UpdateAppointmentStatus(ctx, third.ID, entity.StatusCurrent))

	result, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, result.Served.ID)
	assert.Equal(t, second.ID, result.Current.ID)
	assert.Equal(t, 1, result.Normalized)

	active, err := env.appointmentRepo.FindActiveByBusiness(ctx, business.ID)
	require.NoError(t, err)
	currents := 0
	for _, a := range active {
		if a.Status == entity.StatusCurrent {
			currents++
		}
	}
	assert.Equal(t, 1, currents)
}

func TestQueueService_Advance_LegacyNumbersServedLast(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	// A legacy appointment whose raw queue number had no digits parses to
	// zero and must sort behind every numbered one.
	legacy := &entity.Appointment{
		BusinessID:   business.ID,
		BusinessName: business.Name,
		ClientName:   "Legacy Client",
		ClientUserID: "client-legacy",
		QueueNumber:  0,
		Status:       entity.StatusPending,
		BookedAt:     time.Now().Add(-time.Hour),
	}
	_, err := env.appointmentRepo.CreateAppointment(ctx, legacy)
	require.NoError(t, err)

	numbered := env.book(t, business.ID, "client-a")

	// The numbered appointment is promoted first; the legacy one only
	// reaches CURRENT once the numbered one is served.
	result, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	assert.Nil(t, result.Served)
	require.NotNil(t, result.Current)
	assert.Equal(t, numbered.ID, result.Current.ID)

	result, err = env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Served)
	assert.Equal(t, numbered.ID, result.Served.ID)
	require.NotNil(t, result.Current)
	assert.Equal(t, legacy.ID, result.Current.ID)
}

func TestQueueService_Advance_RequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	_, err := env.queue.Advance(context.Background(), "provider-2", business.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotBusinessOwner)

	_, err = env.queue.Advance(context.Background(), "provider-1", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrBusinessNotFound)
}

func TestQueueService_Advance_PartialFailureReportsCounts(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	env.book(t, business.ID, "client-a")
	next := env.book(t, business.ID, "client-b")

	// Promote the head first so the failing call is a serve-and-promote.
	_, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	env.appointmentRepo.failUpdateIDs[next.ID] = assert.AnError

	_, err = env.queue.Advance(ctx, "provider-1", business.ID)
	require.Error(t, err)

	var partial *domainerrors.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "queue advance", partial.Op)
	assert.Equal(t, 2, partial.Applied)
	assert.Equal(t, 1, partial.Failed)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestQueueService_AdvanceNext_PrefersBusinessWithCurrent(t *testing.T) {
	env := newTestEnv(t)
	barber := env.seedBusiness(t, "provider-1", "Corner Barber")
	clinic := env.seedBusiness(t, "provider-1", "Walk-in Clinic")
	ctx := context.Background()

	env.book(t, barber.ID, "client-a")
	env.book(t, clinic.ID, "client-b")
	env.book(t, clinic.ID, "client-c")

	// Give the clinic an in-progress appointment; it must win even though
	// the barber's head number ties.
	_, err := env.queue.Advance(ctx, "provider-1", clinic.ID)
	require.NoError(t, err)

	result, err := env.queue.AdvanceNext(ctx, "provider-1")
	require.NoError(t, err)
	assert.Equal(t, clinic.ID, result.BusinessID)
}

func TestQueueService_AdvanceNext_PicksSmallestHead(t *testing.T) {
	env := newTestEnv(t)
	barber := env.seedBusiness(t, "provider-1", "Corner Barber")
	clinic := env.seedBusiness(t, "provider-1", "Walk-in Clinic")
	ctx := context.Background()

	// Serve out the clinic's first client so neither business has a
	// CURRENT appointment; clinic head is then 2, barber head 1.
	env.book(t, clinic.ID, "client-a")
	_, err := env.queue.Advance(ctx, "provider-1", clinic.ID)
	require.NoError(t, err)
	_, err = env.queue.Advance(ctx, "provider-1", clinic.ID)
	require.NoError(t, err)
	env.book(t, clinic.ID, "client-b")
	env.book(t, barber.ID, "client-c")

	result, err := env.queue.AdvanceNext(ctx, "provider-1")
	require.NoError(t, err)
	assert.Equal(t, barber.ID, result.BusinessID)
	require.NotNil(t, result.Current)
	assert.Equal(t, int64(1), result.Current.QueueNumber)
}

func TestQueueService_AdvanceNext_AllQueuesEmpty(t *testing.T) {
	env := newTestEnv(t)
	env.seedBusiness(t, "provider-1", "Corner Barber")

	result, err := env.queue.AdvanceNext(context.Background(), "provider-1")
	require.NoError(t, err)
	assert.True(t, result.NoOp)
}

func TestQueueService_Reset_RemovesEverythingAndZeroesCounters(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	env.book(t, business.ID, "client-a")
	env.book(t, business.ID, "client-b")
	env.book(t, business.ID, "client-c")
	_, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	result, err := env.queue.Reset(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Deleted)

	remaining, err := env.appointmentRepo.FindAppointmentsByBusiness(ctx, business.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	stored, err := env.businessRepo.FindBusinessByID(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.TokensIssued)
	assert.Equal(t, int64(0), stored.CurrentToken)

	// A fresh epoch: the next booking starts over at one.
	appointment := env.book(t, business.ID, "client-d")
	assert.Equal(t, int64(1), appointment.QueueNumber)

	assert.Contains(t, env.publisher.EventTypes(), service.EventQueueReset)
}

func TestQueueService_Reset_RequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	_, err := env.queue.Reset(context.Background(), "provider-2", business.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrNotBusinessOwner)
}

func TestQueueService_Reset_PartialFailureKeepsDeletedCount(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	env.book(t, business.ID, "client-a")
	stuck := env.book(t, business.ID, "client-b")
	env.book(t, business.ID, "client-c")

	env.appointmentRepo.failDeleteIDs[stuck.ID] = assert.AnError

	_, err := env.queue.Reset(ctx, "provider-1", business.ID)
	require.Error(t, err)

	var partial *domainerrors.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "queue reset", partial.Op)
	assert.Equal(t, 2, partial.Applied)
	assert.Equal(t, 1, partial.Failed)

	remaining, err := env.appointmentRepo.FindAppointmentsByBusiness(ctx, business.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, stuck.ID, remaining[0].ID)
}

func TestQueueService_GetQueue_BuildsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		env.book(t, business.ID, "client")
	}
	// Promote #1, then serve it and promote #2.
	_, err := env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)
	_, err = env.queue.Advance(ctx, "provider-1", business.ID)
	require.NoError(t, err)

	snapshot, err := env.queue.GetQueue(ctx, business.ID)
	require.NoError(t, err)

	assert.Equal(t, business.Name, snapshot.BusinessName)
	assert.Equal(t, int64(2), snapshot.CurrentToken)
	require.NotNil(t, snapshot.Serving)
	assert.Equal(t, int64(2), snapshot.Serving.QueueNumber)
	assert.Equal(t, 3, snapshot.WaitingCount)
	assert.Equal(t, 6, snapshot.EstimatedWaitMinutes)
}

func TestQueueService_GetQueue_EmptyQueueFloorsEstimate(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	snapshot, err := env.queue.GetQueue(context.Background(), business.ID)
	require.NoError(t, err)
	assert.Nil(t, snapshot.Serving)
	assert.Equal(t, 0, snapshot.WaitingCount)
	assert.Equal(t, 5, snapshot.EstimatedWaitMinutes)
}

func TestQueueService_WatchQueue_DeliversSnapshotsOnChange(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	snapshots := make(chan *usecase.QueueSnapshot, 8)
	unsubscribe, err := env.queue.WatchQueue(ctx, business.ID, func(s *usecase.QueueSnapshot) {
		snapshots <- s
	})
	require.NoError(t, err)
	defer unsubscribe()

	// Initial snapshot of the empty queue.
	initial := waitForSnapshot(t, snapshots)
	assert.Equal(t, 0, initial.WaitingCount)

	env.book(t, business.ID, "client-a")

	next := waitForSnapshot(t, snapshots)
	assert.Equal(t, 1, next.WaitingCount)
	assert.Equal(t, business.ID, next.BusinessID)
}

func TestQueueService_WatchQueue_ConcurrentBookings(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	ctx := context.Background()

	const bookings = 10

	snapshots := make(chan *usecase.QueueSnapshot, 64)
	unsubscribe, err := env.queue.WatchQueue(ctx, business.ID, func(s *usecase.QueueSnapshot) {
		snapshots <- s
	})
	require.NoError(t, err)
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < bookings; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.booking.Book(ctx, usecase.Client{UserID: "client", Name: "Client"}, business.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Deliveries are serialized and each reads the state at delivery time,
	// so the waiting count never goes backwards and the full queue is the
	// last thing seen.
	seen := 0
	deadline := time.After(2 * time.Second)
	for seen < bookings {
		select {
		case s := <-snapshots:
			assert.GreaterOrEqual(t, s.WaitingCount, seen)
			seen = s.WaitingCount
		case <-deadline:
			t.Fatalf("timed out with waiting count %d, want %d", seen, bookings)
		}
	}
}

func TestQueueService_WatchQueue_UnknownBusiness(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.queue.WatchQueue(context.Background(), "missing", func(*usecase.QueueSnapshot) {})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrBusinessNotFound)
}

func waitForSnapshot(t *testing.T, ch <-chan *usecase.QueueSnapshot) *usecase.QueueSnapshot {
	t.Helper()

	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queue snapshot")

		return nil
	}
}
