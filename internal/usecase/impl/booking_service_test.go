package impl

import (
	"context"
	"sync"
	"testing"

	"lineless/internal/domain/entity"
	domainerrors "lineless/internal/domain/errors"
	"lineless/internal/domain/service"
	"lineless/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_Book_AssignsSequentialNumbers(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	first := env.book(t, business.ID, "client-a")
	second := env.book(t, business.ID, "client-b")
	third := env.book(t, business.ID, "client-a")

	assert.Equal(t, int64(1), first.QueueNumber)
	assert.Equal(t, int64(2), second.QueueNumber)
	assert.Equal(t, int64(3), third.QueueNumber)
	assert.Equal(t, entity.StatusPending, first.Status)
	assert.Equal(t, business.Name, first.BusinessName)
	assert.NotEmpty(t, first.ID)
}

func TestBookingService_Book_ConcurrentBookingsNeverCollide(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	const clients = 50

	var wg sync.WaitGroup
	numbers := make(chan int64, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			appointment, err := env.booking.Book(context.Background(), usecase.Client{UserID: "client", Name: "Client"}, business.ID)
			if !assert.NoError(t, err) {
				return
			}
			numbers <- appointment.QueueNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool, clients)
	for n := range numbers {
		assert.False(t, seen[n], "queue number %d issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, clients)
}

func TestBookingService_Book_BusinessNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.booking.Book(context.Background(), usecase.Client{UserID: "client-a"}, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrBusinessNotFound)
}

func TestBookingService_Book_BurnsNumberWhenCreateFails(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	env.appointmentRepo.failCreate = true
	_, err := env.booking.Book(context.Background(), usecase.Client{UserID: "client-a"}, business.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrStoreUnavailable))

	// The increment already happened, so the next booking sees a gap.
	env.appointmentRepo.failCreate = false
	appointment := env.book(t, business.ID, "client-b")
	assert.Equal(t, int64(2), appointment.QueueNumber)
}

func TestBookingService_Book_PublishesBookedEvent(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")

	appointment := env.book(t, business.ID, "client-a")

	events := env.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, service.EventQueueBooked, events[0].Type)
	assert.Equal(t, business.ID, events[0].BusinessID)
	assert.Equal(t, appointment.QueueNumber, events[0].QueueNumber)
	assert.Equal(t, "client-a", events[0].ClientUserID)
}

func TestBookingService_ListForClient_BucketsByStatus(t *testing.T) {
	env := newTestEnv(t)
	barber := env.seedBusiness(t, "provider-1", "Corner Barber")
	clinic := env.seedBusiness(t, "provider-2", "Walk-in Clinic")

	env.book(t, barber.ID, "client-a")
	env.book(t, barber.ID, "client-a")
	env.book(t, clinic.ID, "client-a")
	env.book(t, barber.ID, "client-b")

	// Serve the first barber appointment so client-a has one entry per
	// bucket there.
	_, err := env.queue.Advance(context.Background(), "provider-1", barber.ID)
	require.NoError(t, err)

	view, err := env.booking.ListForClient(context.Background(), "client-a")
	require.NoError(t, err)

	require.Len(t, view.Served, 1)
	assert.Equal(t, int64(1), view.Served[0].QueueNumber)

	require.Len(t, view.Current, 1)
	assert.Equal(t, int64(2), view.Current[0].QueueNumber)
	assert.Equal(t, int64(2), view.Current[0].BusinessCurrentToken)

	require.Len(t, view.Pending, 1)
	assert.Equal(t, clinic.ID, view.Pending[0].BusinessID)
	assert.Equal(t, int64(0), view.Pending[0].BusinessCurrentToken)
}

func TestBookingService_ListForClient_MissingBusinessShowsZeroToken(t *testing.T) {
	env := newTestEnv(t)
	business := env.seedBusiness(t, "provider-1", "Corner Barber")
	env.book(t, business.ID, "client-a")

	// Remove the business document out from under the appointment.
	require.NoError(t, env.businessRepo.DeleteBusiness(context.Background(), business.ID))

	view, err := env.booking.ListForClient(context.Background(), "client-a")
	require.NoError(t, err)
	require.Len(t, view.Pending, 1)
	assert.Equal(t, int64(0), view.Pending[0].BusinessCurrentToken)
}
