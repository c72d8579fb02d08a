package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"lineless/internal/domain/entity"
	"lineless/internal/domain/repository"
	"lineless/internal/domain/service"
	"lineless/internal/infra/persistence/memory"
	"lineless/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type notifyCall struct {
	ClientUserID string
	BusinessName string
	QueueNumber  int64
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) NotifyTurn(ctx context.Context, clientUserID, businessName string, queueNumber int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifyCall{ClientUserID: clientUserID, BusinessName: businessName, QueueNumber: queueNumber})

	return f.err
}

func (f *fakeNotifier) Calls() []notifyCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]notifyCall(nil), f.calls...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.QueueEvent
	err    error
}

func (f *fakePublisher) PublishQueueEvent(ctx context.Context, event *service.QueueEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)

	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) Events() []*service.QueueEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*service.QueueEvent(nil), f.events...)
}

func (f *fakePublisher) EventTypes() []string {
	types := make([]string, 0)
	for _, e := range f.Events() {
		types = append(types, e.Type)
	}

	return types
}

type fakeQRCodeService struct {
	png      []byte
	parsedID string
	err      error
}

func (f *fakeQRCodeService) GenerateBookingQR(businessID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.png, nil
}

func (f *fakeQRCodeService) ParseBookingQR(qrData string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return f.parsedID, nil
}

// flakyAppointmentRepo injects write failures into an otherwise real
// repository.
type flakyAppointmentRepo struct {
	repository.AppointmentRepository

	mu            sync.Mutex
	failCreate    bool
	failUpdateIDs map[string]error
	failDeleteIDs map[string]error
}

func (f *flakyAppointmentRepo) CreateAppointment(ctx context.Context, appointment *entity.Appointment) (string, error) {
	f.mu.Lock()
	fail := f.failCreate
	f.mu.Unlock()
	if fail {
		return "", repository.ErrStoreUnavailable
	}

	return f.AppointmentRepository.CreateAppointment(ctx, appointment)
}

func (f *flakyAppointmentRepo) UpdateAppointmentStatus(ctx context.Context, id string, status entity.AppointmentStatus) error {
	f.mu.Lock()
	err, ok := f.failUpdateIDs[id]
	f.mu.Unlock()
	if ok {
		return err
	}

	return f.AppointmentRepository.UpdateAppointmentStatus(ctx, id, status)
}

func (f *flakyAppointmentRepo) DeleteAppointment(ctx context.Context, id string) error {
	f.mu.Lock()
	err, ok := f.failDeleteIDs[id]
	f.mu.Unlock()
	if ok {
		return err
	}

	return f.AppointmentRepository.DeleteAppointment(ctx, id)
}

// testEnv wires the services over the in-memory store the way the Fx graph
// does in production.
type testEnv struct {
	store           *memory.Store
	businessRepo    repository.BusinessRepository
	appointmentRepo *flakyAppointmentRepo
	notifier        *fakeNotifier
	publisher       *fakePublisher
	qrcode          *fakeQRCodeService

	booking  usecase.BookingUsecase
	queue    usecase.QueueUsecase
	business usecase.BusinessUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	env := &testEnv{
		store:        store,
		businessRepo: memory.NewBusinessRepository(store),
		appointmentRepo: &flakyAppointmentRepo{
			AppointmentRepository: memory.NewAppointmentRepository(store),
			failUpdateIDs:         make(map[string]error),
			failDeleteIDs:         make(map[string]error),
		},
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		qrcode:    &fakeQRCodeService{png: []byte("png-bytes")},
	}

	logger := newDiscardLogger()
	env.booking = NewBookingService(BookingServiceParams{
		BusinessRepo:    env.businessRepo,
		AppointmentRepo: env.appointmentRepo,
		Publisher:       env.publisher,
		Logger:          logger,
	})
	env.queue = NewQueueService(QueueServiceParams{
		BusinessRepo:    env.businessRepo,
		AppointmentRepo: env.appointmentRepo,
		Notifier:        env.notifier,
		Publisher:       env.publisher,
		Logger:          logger,
	})
	env.business = NewBusinessService(BusinessServiceParams{
		BusinessRepo:  env.businessRepo,
		QueueUsecase:  env.queue,
		QRCodeService: env.qrcode,
	})

	return env
}

func (env *testEnv) seedBusiness(t *testing.T, providerID, name string) *entity.Business {
	t.Helper()

	business := &entity.Business{
		Name:            name,
		ServiceCategory: "salon",
		ProviderID:      providerID,
		OpenTime:        "09:00",
		CloseTime:       "18:00",
	}
	if _, err := env.businessRepo.CreateBusiness(context.Background(), business); err != nil {
		t.Fatalf("seed business: %v", err)
	}

	return business
}

func (env *testEnv) book(t *testing.T, businessID, clientID string) *entity.Appointment {
	t.Helper()

	appointment, err := env.booking.Book(context.Background(), usecase.Client{UserID: clientID, Name: "Client " + clientID}, businessID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	return appointment
}
