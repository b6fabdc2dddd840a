package reschedule_appointment

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

type fakeTxManager struct{ mu sync.Mutex }

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[int64]*domain.Appointment
}

func newFakeAppointmentRepo(items ...*domain.Appointment) *fakeAppointmentRepo {
	repo := &fakeAppointmentRepo{items: make(map[int64]*domain.Appointment)}
	for _, a := range items {
		repo.items[a.ID] = a
	}
	return repo
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	clone := *a
	return &clone, nil
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

func (r *fakeAppointmentRepo) UpdateSlot(_ context.Context, id int64, date time.Time, startTime types.TimeString, serviceID int64, serviceName string, durationMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Date = date
	a.StartTime = startTime
	a.ServiceID = serviceID
	a.ServiceName = serviceName
	a.DurationMinutes = durationMinutes
	return nil
}

type fakeAgendaRepo struct{ agenda *domain.Agenda }

func (r *fakeAgendaRepo) GetByID(_ context.Context, id int64) (*domain.Agenda, error) {
	if r.agenda == nil || r.agenda.ID != id {
		return nil, agendaRepo.ErrAgendaNotFound
	}
	clone := *r.agenda
	return &clone, nil
}

type fakeCatalogRepo struct{ services map[int64]*domain.Service }

func (r *fakeCatalogRepo) GetServiceByID(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := r.services[id]
	if !ok {
		return nil, catalogRepo.ErrServiceNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeCatalogRepo) GetOffering(_ context.Context, agendaID, serviceID int64) (*domain.AgendaServiceOffering, error) {
	if _, ok := r.services[serviceID]; !ok {
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

func defaultAgenda() *domain.Agenda {
	return &domain.Agenda{
		ID:                       1,
		Name:                     "Sala 1",
		SlotsPerHour:             1,
		CapacityPolicy:           domain.CapacityPolicyAgenda,
		BucketGranularityMinutes: 60,
		DefaultClosedDay:         true,
	}
}

func existingAppointment(id int64) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		AgendaID:        1,
		ServiceID:       7,
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
		ServiceName:     "Consulta",
		CustomerName:    "Ana García",
	}
}

func newTestEnv(agenda *domain.Agenda, appointments ...*domain.Appointment) *testEnv {
	repo := newFakeAppointmentRepo(appointments...)
	events := &fakeNotifier{}

	uc := NewUseCase(
		repo,
		&fakeAgendaRepo{agenda: agenda},
		&fakeCatalogRepo{services: map[int64]*domain.Service{
			7: {ID: 7, Name: "Consulta", DurationMinutes: 30},
			8: {ID: 8, Name: "Control", DurationMinutes: 60},
		}},
		&fakeScheduleRepo{ruleSet: schedule.RuleSet{WorkingHours: fullWeekHours(agenda.ID)}},
		&fakeTxManager{},
		events,
		fakeLogger{},
	)
	uc.timeProvider = fixedTimeProvider{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}

	return &testEnv{uc: uc, appointments: repo, notifier: events}
}

func rescheduleRequest(id int64) *Request {
	return &Request{
		AppointmentID: id,
		Date:          time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		StartTime:     types.TimeString("11:00"),
	}
}

// --- Тесты ---

func TestExecuteMovesAppointment(t *testing.T) {
	env := newTestEnv(defaultAgenda(), existingAppointment(1))

	resp, err := env.uc.Execute(context.Background(), rescheduleRequest(1))
	require.NoError(t, err)

	assert.Equal(t, types.TimeString("11:00"), resp.StartTime)
	assert.Equal(t, "2026-09-16", resp.Date.Format(domain.DateFormat))
	assert.Equal(t, int64(7), resp.ServiceID)
	assert.Equal(t, 1, env.notifier.count())

	stored, err := env.appointments.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("11:00"), stored.StartTime)
}

func TestExecuteWithinSameBucketIgnoresOwnBooking(t *testing.T) {
	// Единственное место в бакете занято самой записью:
	// сдвиг внутри бакета не должен упираться в собственную бронь
	env := newTestEnv(defaultAgenda(), existingAppointment(1))

	req := rescheduleRequest(1)
	req.Date = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	req.StartTime = "10:30"

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:30"), resp.StartTime)
}

func TestExecuteTargetSlotFull(t *testing.T) {
	other := existingAppointment(2)
	other.StartTime = "11:00"
	env := newTestEnv(defaultAgenda(), existingAppointment(1), other)

	req := rescheduleRequest(1)
	req.Date = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	_, err := env.uc.Execute(context.Background(), req)
	require.ErrorIs(t, err, ErrSlotFull)

	var capErr *capacity.CapacityExceededError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 11, capErr.Bucket.Index)
	assert.Zero(t, env.notifier.count())
}

func TestExecuteChangesService(t *testing.T) {
	env := newTestEnv(defaultAgenda(), existingAppointment(1))

	req := rescheduleRequest(1)
	newServiceID := int64(8)
	req.NewServiceID = &newServiceID

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.ServiceID)
	assert.Equal(t, "Control", resp.ServiceName)
	assert.Equal(t, 60, resp.DurationMinutes)
}

func TestExecuteNewServiceNotOffered(t *testing.T) {
	env := newTestEnv(defaultAgenda(), existingAppointment(1))

	req := rescheduleRequest(1)
	missing := int64(99)
	req.NewServiceID = &missing

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrServiceNotOffered)
}

func TestExecuteCancelledNotReschedulable(t *testing.T) {
	cancelled := existingAppointment(1)
	cancelled.Status = domain.StatusCancelled
	env := newTestEnv(defaultAgenda(), cancelled)

	_, err := env.uc.Execute(context.Background(), rescheduleRequest(1))
	assert.ErrorIs(t, err, ErrNotReschedulable)
	assert.Zero(t, env.notifier.count())
}

func TestExecuteAppointmentNotFound(t *testing.T) {
	env := newTestEnv(defaultAgenda())

	_, err := env.uc.Execute(context.Background(), rescheduleRequest(42))
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestExecuteRejectsPastDate(t *testing.T) {
	env := newTestEnv(defaultAgenda(), existingAppointment(1))

	req := rescheduleRequest(1)
	req.Date = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecuteRejectsClosedSlot(t *testing.T) {
	env := newTestEnv(defaultAgenda(), existingAppointment(1))

	req := rescheduleRequest(1)
	req.StartTime = "20:00"

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideSchedule)
}
