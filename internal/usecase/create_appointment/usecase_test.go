package create_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvan51/agenda-booking-engine/internal/capacity"
	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	appointmentRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/appointment"
	catalogRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/catalog"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// --- Фейки ---

type fakeLogger struct{}

func (fakeLogger) Info(string, ...interface{})  {}
func (fakeLogger) Warn(string, ...interface{})  {}
func (fakeLogger) Error(string, ...interface{}) {}

type fixedTimeProvider struct{ now time.Time }

func (p fixedTimeProvider) Now() time.Time { return p.now }

// fakeTxManager сериализует транзакции мьютексом: внутри fn видна
// консистентная картина хранилища, как при настоящей сериализуемой транзакции
type fakeTxManager struct{ mu sync.Mutex }

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []*domain.Appointment
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.IdempotencyKey != nil {
		for _, existing := range r.items {
			if existing.AgendaID == a.AgendaID && existing.IdempotencyKey != nil &&
				*existing.IdempotencyKey == *a.IdempotencyKey {
				return nil, appointmentRepo.ErrDuplicateIdempotencyKey
			}
		}
	}

	r.nextID++
	clone := *a
	clone.ID = r.nextID
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.items = append(r.items, &clone)
	return &clone, nil
}

func (r *fakeAppointmentRepo) GetByIdempotencyKey(_ context.Context, agendaID int64, key string) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.items {
		if a.AgendaID == agendaID && a.IdempotencyKey != nil && *a.IdempotencyKey == key {
			clone := *a
			return &clone, nil
		}
	}
	return nil, appointmentRepo.ErrAppointmentNotFound
}

func (r *fakeAppointmentRepo) GetByAgendaWithFilter(_ context.Context, filter domain.AgendaAppointmentsFilter) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Appointment
	for _, a := range r.items {
		if a.AgendaID != filter.AgendaID {
			continue
		}
		if filter.Date != nil && !a.Date.Equal(*filter.Date) {
			continue
		}
		clone := *a
		result = append(result, &clone)
	}
	return result, nil
}

type fakeAgendaRepo struct{ agenda *domain.Agenda }

func (r *fakeAgendaRepo) GetByID(_ context.Context, id int64) (*domain.Agenda, error) {
	if r.agenda == nil || r.agenda.ID != id {
		return nil, agendaRepo.ErrAgendaNotFound
	}
	clone := *r.agenda
	return &clone, nil
}

type fakeCatalogRepo struct{ service *domain.Service }

func (r *fakeCatalogRepo) GetServiceByID(_ context.Context, id int64) (*domain.Service, error) {
	if r.service == nil || r.service.ID != id {
		return nil, catalogRepo.ErrServiceNotFound
	}
	clone := *r.service
	return &clone, nil
}

func (r *fakeCatalogRepo) GetOffering(_ context.Context, agendaID, serviceID int64) (*domain.AgendaServiceOffering, error) {
	if r.service == nil || r.service.ID != serviceID {
		return nil, catalogRepo.ErrServiceNotOffered
	}
	return &domain.AgendaServiceOffering{AgendaID: agendaID, ServiceID: serviceID, Active: true}, nil
}

type fakeScheduleRepo struct{ ruleSet schedule.RuleSet }

func (r *fakeScheduleRepo) GetRuleSet(_ context.Context, _ int64, _ time.Time) (schedule.RuleSet, error) {
	return r.ruleSet, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifier.EventKind
}

func (n *fakeNotifier) Publish(_ int64, kind notifier.EventKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// --- Окружение ---

type testEnv struct {
	uc           *UseCase
	appointments *fakeAppointmentRepo
	notifier     *fakeNotifier
}

func fullWeekHours(agendaID int64) []domain.WorkingHourRule {
	rules := make([]domain.WorkingHourRule, 0, 7)
	for day := 0; day < 7; day++ {
		rules = append(rules, domain.WorkingHourRule{
			AgendaID:  agendaID,
			DayOfWeek: day,
			StartTime: "09:00",
			EndTime:   "18:00",
		})
	}
	return rules
}

func newTestEnv(agenda *domain.Agenda, service *domain.Service) *testEnv {
	appointments := &fakeAppointmentRepo{}
	events := &fakeNotifier{}

	uc := NewUseCase(
		appointments,
		&fakeAgendaRepo{agenda: agenda},
		&fakeCatalogRepo{service: service},
		&fakeScheduleRepo{ruleSet: schedule.RuleSet{WorkingHours: fullWeekHours(agenda.ID)}},
		&fakeTxManager{},
		events,
		fakeLogger{},
	)
	uc.timeProvider = fixedTimeProvider{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}

	return &testEnv{uc: uc, appointments: appointments, notifier: events}
}

func defaultAgenda() *domain.Agenda {
	return &domain.Agenda{
		ID:                       1,
		Name:                     "Sala 1",
		SlotsPerHour:             2,
		CapacityPolicy:           domain.CapacityPolicyAgenda,
		BucketGranularityMinutes: 60,
		DefaultClosedDay:         true,
	}
}

func defaultService() *domain.Service {
	return &domain.Service{ID: 7, Name: "Consulta", DurationMinutes: 30}
}

func bookingRequest() *Request {
	return &Request{
		AgendaID:     1,
		ServiceID:    7,
		Date:         time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:    types.TimeString("10:00"),
		CustomerName: "Ana García",
	}
}

// --- Тесты ---

func TestExecuteCreatesPendingAppointment(t *testing.T) {
	env := newTestEnv(defaultAgenda(), defaultService())

	resp, err := env.uc.Execute(context.Background(), bookingRequest())
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, "Consulta", resp.ServiceName)
	assert.False(t, resp.Replayed)
	assert.Equal(t, 1, env.notifier.count())
}

func TestExecuteValidation(t *testing.T) {
	env := newTestEnv(defaultAgenda(), defaultService())

	req := bookingRequest()
	req.CustomerName = ""

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, env.notifier.count())
}

func TestExecuteRejectsPastDate(t *testing.T) {
	env := newTestEnv(defaultAgenda(), defaultService())

	req := bookingRequest()
	req.Date = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecuteRejectsOutsideSchedule(t *testing.T) {
	env := newTestEnv(defaultAgenda(), defaultService())

	req := bookingRequest()
	req.StartTime = "20:00"

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideSchedule)
}

func TestExecuteRejectsExceedingWindow(t *testing.T) {
	service := defaultService()
	service.DurationMinutes = 45
	env := newTestEnv(defaultAgenda(), service)

	req := bookingRequest()
	req.StartTime = "17:45"

	_, err := env.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrExceedsWindow)

	var exceedsErr *schedule.ExceedsWindowError
	require.True(t, errors.As(err, &exceedsErr))
	assert.Equal(t, 30, exceedsErr.OverrunMinutes)
}

func TestExecuteSlotFull(t *testing.T) {
	agenda := defaultAgenda()
	agenda.SlotsPerHour = 2
	env := newTestEnv(agenda, defaultService())

	// Два места в бакете 10:00-11:00
	_, err := env.uc.Execute(context.Background(), bookingRequest())
	require.NoError(t, err)
	req2 := bookingRequest()
	req2.StartTime = "10:30"
	_, err = env.uc.Execute(context.Background(), req2)
	require.NoError(t, err)

	// Третья запись в тот же бакет не помещается
	req3 := bookingRequest()
	_, err = env.uc.Execute(context.Background(), req3)
	require.ErrorIs(t, err, ErrSlotFull)

	var capErr *capacity.CapacityExceededError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 10, capErr.Bucket.Index)
	assert.Equal(t, 2, capErr.Capacity)
	assert.Equal(t, 2, capErr.Committed)

	// Соседний бакет свободен
	req4 := bookingRequest()
	req4.StartTime = "11:00"
	_, err = env.uc.Execute(context.Background(), req4)
	require.NoError(t, err)
}

func TestExecuteServiceConcurrencyPolicy(t *testing.T) {
	agenda := defaultAgenda()
	agenda.SlotsPerHour = 5
	agenda.CapacityPolicy = domain.CapacityPolicyService
	service := defaultService()
	service.Concurrency = 1
	env := newTestEnv(agenda, service)

	_, err := env.uc.Execute(context.Background(), bookingRequest())
	require.NoError(t, err)

	req2 := bookingRequest()
	req2.StartTime = "10:30"
	_, err = env.uc.Execute(context.Background(), req2)
	assert.ErrorIs(t, err, ErrSlotFull)
}

func TestExecuteCancelledAppointmentFreesSpot(t *testing.T) {
	agenda := defaultAgenda()
	agenda.SlotsPerHour = 1
	env := newTestEnv(agenda, defaultService())

	resp, err := env.uc.Execute(context.Background(), bookingRequest())
	require.NoError(t, err)

	// Бакет занят
	_, err = env.uc.Execute(context.Background(), bookingRequest())
	require.ErrorIs(t, err, ErrSlotFull)

	// После отмены место освобождается
	env.appointments.mu.Lock()
	for _, a := range env.appointments.items {
		if a.ID == resp.ID {
			a.Status = domain.StatusCancelled
		}
	}
	env.appointments.mu.Unlock()

	_, err = env.uc.Execute(context.Background(), bookingRequest())
	require.NoError(t, err)
}

func TestExecuteIdempotencyReplay(t *testing.T) {
	env := newTestEnv(defaultAgenda(), defaultService())

	key := "req-123"
	req := bookingRequest()
	req.IdempotencyKey = &key

	first, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.ID, second.ID)

	// Повтор не создаёт запись и не публикует событие
	assert.Len(t, env.appointments.items, 1)
	assert.Equal(t, 1, env.notifier.count())
}

func TestExecuteAgendaNotFound(t *testing.T) {
	env := newTestEnv(defaultAgenda(), defaultService())

	req := bookingRequest()
	req.AgendaID = 99

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAgendaNotFound)
}

func TestExecuteConcurrentBookingSingleWinner(t *testing.T) {
	// Восемь агентов конкурируют за единственное место: ровно один
	// выигрывает, остальные получают SlotFull
	agenda := defaultAgenda()
	agenda.SlotsPerHour = 1
	env := newTestEnv(agenda, defaultService())

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.uc.Execute(context.Background(), bookingRequest())
		}(i)
	}
	wg.Wait()

	var wins, fulls int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotFull):
			fulls++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, fulls)
	assert.Len(t, env.appointments.items, 1)
}
