package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	appointmentRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/appointment"
	"github.com/duvan51/agenda-booking-engine/internal/notifier"
	"github.com/duvan51/agenda-booking-engine/internal/service/appointments/models"
)

// Репозиторий Postgres обязан подходить под контракт сервиса
var _ AppointmentRepository = (*appointmentRepo.Repository)(nil)

type fakeLogger struct{}

func (fakeLogger) Info(string, ...interface{})  {}
func (fakeLogger) Warn(string, ...interface{})  {}
func (fakeLogger) Error(string, ...interface{}) {}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifier.EventKind
}

func (n *fakeNotifier) Publish(_ int64, kind notifier.EventKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, kind)
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
		if !filter.IncludeCancelled && a.Status == domain.StatusCancelled {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.ServiceID != nil && a.ServiceID != *filter.ServiceID {
			continue
		}
		clone := *a
		result = append(result, &clone)
	}
	return result, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

func (r *fakeAppointmentRepo) Cancel(_ context.Context, id int64, reason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok || a.Status == domain.StatusCancelled {
		return appointmentRepo.ErrAppointmentNotFound
	}
	now := time.Now()
	a.Status = domain.StatusCancelled
	a.CancellationReason = reason
	a.CancelledAt = &now
	return nil
}

type fakeAgendaRepo struct{ agenda *domain.Agenda }

func (r *fakeAgendaRepo) GetByID(_ context.Context, id int64) (*domain.Agenda, error) {
	if r.agenda == nil || r.agenda.ID != id {
		return nil, agendaRepo.ErrAgendaNotFound
	}
	return r.agenda, nil
}

func activeAppointment(id, agendaID int64) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		AgendaID:        agendaID,
		ServiceID:       7,
		Date:            time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
		ServiceName:     "Consulta",
		CustomerName:    "Ana García",
	}
}

func newService(repo *fakeAppointmentRepo, events *fakeNotifier) *Service {
	return NewService(
		repo,
		&fakeAgendaRepo{agenda: &domain.Agenda{ID: 1, Name: "Sala 1"}},
		events,
		fakeLogger{},
	)
}

func TestGetByID(t *testing.T) {
	repo := newFakeAppointmentRepo(activeAppointment(1, 1))
	svc := newService(repo, &fakeNotifier{})

	resp, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "10:30", resp.EndTime.String())

	_, err = svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestConfirm(t *testing.T) {
	pending := activeAppointment(1, 1)
	pending.Status = domain.StatusPending
	repo := newFakeAppointmentRepo(pending)
	svc := newService(repo, &fakeNotifier{})

	resp, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	// Повторное подтверждение и подтверждение отменённой записи отклоняются
	_, err = svc.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConfirmable)

	repo.items[1].Status = domain.StatusCancelled
	_, err = svc.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConfirmable)

	_, err = svc.Confirm(context.Background(), 42)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel(t *testing.T) {
	repo := newFakeAppointmentRepo(activeAppointment(1, 1))
	events := &fakeNotifier{}
	svc := newService(repo, events)

	reason := "cliente no asistirá"
	resp, err := svc.Cancel(context.Background(), 1, &reason)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, reason, *resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)
	assert.Equal(t, []notifier.EventKind{notifier.EventAppointmentCancelled}, events.events)

	// Повторная отмена сообщает о конфликте, состояние не меняется
	_, err = svc.Cancel(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Len(t, events.events, 1)
}

func TestCancelNotFound(t *testing.T) {
	svc := newService(newFakeAppointmentRepo(), &fakeNotifier{})

	_, err := svc.Cancel(context.Background(), 42, nil)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestGetAgendaAppointmentsFiltering(t *testing.T) {
	cancelled := activeAppointment(2, 1)
	cancelled.Status = domain.StatusCancelled
	repo := newFakeAppointmentRepo(activeAppointment(1, 1), cancelled)
	svc := newService(repo, &fakeNotifier{})

	// По умолчанию отменённые скрыты
	resp, err := svc.GetAgendaAppointments(context.Background(), &models.GetAgendaAppointmentsRequest{AgendaID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	// includeCancelled раскрывает их
	resp, err = svc.GetAgendaAppointments(context.Background(), &models.GetAgendaAppointmentsRequest{
		AgendaID:         1,
		IncludeCancelled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	// Неизвестный статус отклоняется
	badStatus := "unknown"
	_, err = svc.GetAgendaAppointments(context.Background(), &models.GetAgendaAppointmentsRequest{
		AgendaID: 1,
		Status:   &badStatus,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetAgendaAppointmentsUnknownAgenda(t *testing.T) {
	svc := newService(newFakeAppointmentRepo(), &fakeNotifier{})

	_, err := svc.GetAgendaAppointments(context.Background(), &models.GetAgendaAppointmentsRequest{AgendaID: 5})
	assert.ErrorIs(t, err, ErrAgendaNotFound)
}
