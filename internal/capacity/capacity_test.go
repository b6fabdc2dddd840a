package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

func activeAppointment(id int64, start string, duration int) *domain.Appointment {
	return &domain.Appointment{
		ID:              id,
		AgendaID:        1,
		StartTime:       types.TimeString(start),
		DurationMinutes: duration,
		Status:          domain.StatusConfirmed,
	}
}

func TestTouchedBuckets(t *testing.T) {
	// Запись внутри одного часа
	indices, err := TouchedBuckets("10:00", 30, 60)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, indices)

	// Запись, переходящая границу часа, занимает оба бакета
	indices, err = TouchedBuckets("10:30", 60, 60)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11}, indices)

	// Запись впритык к границе не трогает следующий бакет
	indices, err = TouchedBuckets("10:00", 60, 60)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, indices)

	// 30-минутная гранулярность
	indices, err = TouchedBuckets("10:00", 45, 30)
	require.NoError(t, err)
	assert.Equal(t, []int{20, 21}, indices)

	_, err = TouchedBuckets("10:00", 0, 60)
	assert.Error(t, err)
}

func TestEffectiveCapacity(t *testing.T) {
	agenda := &domain.Agenda{ID: 1, SlotsPerHour: 3, CapacityPolicy: domain.CapacityPolicyAgenda}
	service := &domain.Service{ID: 7, Concurrency: 5}

	// Политика agenda игнорирует concurrency услуги
	assert.Equal(t, 3, EffectiveCapacity(agenda, service))

	// Политика service использует concurrency услуги
	agenda.CapacityPolicy = domain.CapacityPolicyService
	assert.Equal(t, 5, EffectiveCapacity(agenda, service))

	// Услуга без собственной concurrency наследует вместимость агенды
	service.Concurrency = 0
	assert.Equal(t, 3, EffectiveCapacity(agenda, service))

	// Без услуги действует вместимость агенды
	assert.Equal(t, 3, EffectiveCapacity(agenda, nil))
}

func TestCountCommitted(t *testing.T) {
	appointments := []*domain.Appointment{
		activeAppointment(1, "10:00", 30),
		activeAppointment(2, "10:30", 30),
		// Длинная запись пересекает бакеты 10 и 11
		activeAppointment(3, "10:45", 60),
		// Отменённая запись место не занимает
		{ID: 4, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusCancelled},
		// Запись соседнего часа
		activeAppointment(5, "12:00", 30),
	}

	assert.Equal(t, 3, CountCommitted(appointments, 10, 60))
	assert.Equal(t, 1, CountCommitted(appointments, 11, 60))
	assert.Equal(t, 1, CountCommitted(appointments, 12, 60))
	assert.Equal(t, 0, CountCommitted(appointments, 9, 60))
}

func TestCountCommittedExcluding(t *testing.T) {
	appointments := []*domain.Appointment{
		activeAppointment(1, "10:00", 30),
		activeAppointment(2, "10:30", 30),
	}

	// Перенос записи 1 внутри того же бакета не учитывает её саму
	assert.Equal(t, 1, CountCommittedExcluding(appointments, 1, 10, 60))
	assert.Equal(t, 2, CountCommittedExcluding(appointments, 0, 10, 60))
}

func TestBucketLabel(t *testing.T) {
	b := Bucket{AgendaID: 1, Date: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), Index: 10}
	assert.Equal(t, "10:00-11:00", b.Label(60))

	last := Bucket{AgendaID: 1, Index: 23}
	assert.Equal(t, "23:00-24:00", last.Label(60))
}
