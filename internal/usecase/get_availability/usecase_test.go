package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	agendaRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/agenda"
	catalogRepo "github.com/duvan51/agenda-booking-engine/internal/infra/storage/catalog"
	"github.com/duvan51/agenda-booking-engine/internal/schedule"
	"github.com/duvan51/agenda-booking-engine/pkg/ptr"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

type fakeLogger struct{}

func (fakeLogger) Info(string, ...interface{})  {}
func (fakeLogger) Warn(string, ...interface{})  {}
func (fakeLogger) Error(string, ...interface{}) {}

type fakeAppointmentRepo struct{ items []*domain.Appointment }

func (r *fakeAppointmentRepo) GetByAgendaWithFilter(_ context.Context, filter domain.AgendaAppointmentsFilter) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	for _, a := range r.items {
		if a.AgendaID == filter.AgendaID {
			result = append(result, a)
		}
	}
	return result, nil
}

type fakeAgendaRepo struct{ agenda *domain.Agenda }

func (r *fakeAgendaRepo) GetByID(_ context.Context, id int64) (*domain.Agenda, error) {
	if r.agenda == nil || r.agenda.ID != id {
		return nil, agendaRepo.ErrAgendaNotFound
	}
	return r.agenda, nil
}

type fakeCatalogRepo struct{ service *domain.Service }

func (r *fakeCatalogRepo) GetServiceByID(_ context.Context, id int64) (*domain.Service, error) {
	if r.service == nil || r.service.ID != id {
		return nil, catalogRepo.ErrServiceNotFound
	}
	return r.service, nil
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

var monday = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func mondayHours(agendaID int64, start, end types.TimeString) schedule.RuleSet {
	return schedule.RuleSet{
		WorkingHours: []domain.WorkingHourRule{
			{AgendaID: agendaID, DayOfWeek: 0, StartTime: start, EndTime: end},
		},
	}
}

func newUseCase(agenda *domain.Agenda, rs schedule.RuleSet, appointments []*domain.Appointment) *UseCase {
	return NewUseCase(
		&fakeAppointmentRepo{items: appointments},
		&fakeAgendaRepo{agenda: agenda},
		&fakeCatalogRepo{service: &domain.Service{ID: 7, Name: "Consulta", DurationMinutes: 30}},
		&fakeScheduleRepo{ruleSet: rs},
		fakeLogger{},
	)
}

func TestExecuteReturnsWindowsAndBuckets(t *testing.T) {
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 2, BucketGranularityMinutes: 60, DefaultClosedDay: true}
	appointments := []*domain.Appointment{
		{ID: 1, AgendaID: 1, Date: monday, StartTime: "10:00", DurationMinutes: 30, Status: domain.StatusConfirmed},
	}
	uc := newUseCase(agenda, mondayHours(1, "09:00", "12:00"), appointments)

	resp, err := uc.Execute(context.Background(), &Request{AgendaID: 1, Date: monday})
	require.NoError(t, err)

	require.Len(t, resp.Windows, 1)
	assert.Equal(t, types.TimeString("09:00"), resp.Windows[0].StartTime)
	assert.Equal(t, types.TimeString("12:00"), resp.Windows[0].EndTime)

	// Три часовых бакета: 09, 10, 11
	require.Len(t, resp.Buckets, 3)
	assert.Equal(t, 2, resp.Buckets[0].Available)
	assert.Equal(t, 1, resp.Buckets[1].Available) // занят одной записью
	assert.Equal(t, 2, resp.Buckets[2].Available)
	assert.Equal(t, 2, resp.Buckets[1].Total)
}

func TestExecuteCancelRestoresFullCapacity(t *testing.T) {
	// Запись занимает место, отмена возвращает бакету исходную вместимость
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 2, BucketGranularityMinutes: 60, DefaultClosedDay: true}
	booked := &domain.Appointment{
		ID: 1, AgendaID: 1, Date: monday,
		StartTime: "10:00", DurationMinutes: 30,
		Status: domain.StatusConfirmed,
	}
	uc := newUseCase(agenda, mondayHours(1, "09:00", "12:00"), []*domain.Appointment{booked})

	resp, err := uc.Execute(context.Background(), &Request{AgendaID: 1, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Buckets[1].Available)

	booked.Status = domain.StatusCancelled

	resp, err = uc.Execute(context.Background(), &Request{AgendaID: 1, Date: monday})
	require.NoError(t, err)
	for _, bucket := range resp.Buckets {
		assert.Equal(t, bucket.Total, bucket.Available)
	}
}

func TestExecuteClosedDayHasNoBuckets(t *testing.T) {
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 2, BucketGranularityMinutes: 60, DefaultClosedDay: true}
	uc := newUseCase(agenda, schedule.RuleSet{}, nil)

	resp, err := uc.Execute(context.Background(), &Request{AgendaID: 1, Date: monday})
	require.NoError(t, err)
	assert.Empty(t, resp.Windows)
	assert.Empty(t, resp.Buckets)
}

func TestExecuteSlotDecision(t *testing.T) {
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 2, BucketGranularityMinutes: 60, DefaultClosedDay: true}
	uc := newUseCase(agenda, mondayHours(1, "09:00", "12:00"), nil)

	resp, err := uc.Execute(context.Background(), &Request{
		AgendaID: 1,
		Date:     monday,
		Time:     ptr.Ptr(types.TimeString("10:00")),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Slot)
	assert.True(t, resp.Slot.Open)
	assert.Equal(t, schedule.ReasonOpen, resp.Slot.Reason)

	resp, err = uc.Execute(context.Background(), &Request{
		AgendaID: 1,
		Date:     monday,
		Time:     ptr.Ptr(types.TimeString("14:00")),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Slot)
	assert.False(t, resp.Slot.Open)
	assert.Equal(t, schedule.ReasonOutsideHours, resp.Slot.Reason)
}

func TestExecuteAgendaNotFound(t *testing.T) {
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 2, DefaultClosedDay: true}
	uc := newUseCase(agenda, schedule.RuleSet{}, nil)

	_, err := uc.Execute(context.Background(), &Request{AgendaID: 42, Date: monday})
	assert.ErrorIs(t, err, ErrAgendaNotFound)
}

func TestExecuteServiceScopedAvailability(t *testing.T) {
	// Услуга с собственным расписанием: доступность считается по её окнам
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 2, BucketGranularityMinutes: 60, DefaultClosedDay: true}
	serviceID := int64(7)
	rs := mondayHours(1, "09:00", "18:00")
	rs.ServiceRules = []domain.ServiceScheduleRule{
		{AgendaID: 1, ServiceID: serviceID, DayOfWeek: 0, StartTime: "10:00", EndTime: "12:00"},
	}
	uc := newUseCase(agenda, rs, nil)

	resp, err := uc.Execute(context.Background(), &Request{AgendaID: 1, Date: monday, ServiceID: &serviceID})
	require.NoError(t, err)
	require.Len(t, resp.Windows, 1)
	assert.Equal(t, types.TimeString("10:00"), resp.Windows[0].StartTime)
	assert.Equal(t, types.TimeString("12:00"), resp.Windows[0].EndTime)
	assert.Len(t, resp.Buckets, 2)
}
