package capacity

import (
	"fmt"
	"time"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Bucket дискретная единица учёта вместимости: (агенда, дата, индекс).
// Индекс — порядковый номер интервала гранулярности внутри суток.
type Bucket struct {
	AgendaID int64
	Date     time.Time
	Index    int
}

// Window возвращает границы бакета в минутах суток
func (b Bucket) Window(granularityMinutes int) (start, end int) {
	start = b.Index * granularityMinutes
	end = start + granularityMinutes
	if end > domain.MinutesPerDay {
		end = domain.MinutesPerDay
	}
	return start, end
}

// Label человекочитаемая метка бакета для диагностики отказов: "10:00-11:00"
func (b Bucket) Label(granularityMinutes int) string {
	start, end := b.Window(granularityMinutes)
	return fmt.Sprintf("%s-%s", types.FromMinuteOfDay(start), endLabel(end))
}

func endLabel(minute int) types.TimeString {
	if minute >= domain.MinutesPerDay {
		return types.TimeString("24:00")
	}
	return types.FromMinuteOfDay(minute)
}

// TouchedBuckets возвращает индексы всех бакетов, которые пересекает
// интервал [start, start+duration). Запись, переходящая границу бакета,
// занимает место в каждом из затронутых бакетов.
func TouchedBuckets(start types.TimeString, durationMinutes, granularityMinutes int) ([]int, error) {
	startMin, err := start.MinuteOfDay()
	if err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("capacity: duration must be positive, got %d", durationMinutes)
	}
	if granularityMinutes <= 0 {
		granularityMinutes = domain.DefaultBucketGranularityMinutes
	}

	endMin := startMin + durationMinutes
	if endMin > domain.MinutesPerDay {
		endMin = domain.MinutesPerDay
	}

	first := startMin / granularityMinutes
	last := (endMin - 1) / granularityMinutes

	indices := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		indices = append(indices, i)
	}
	return indices, nil
}

// EffectiveCapacity вычисляет вместимость бакета c учётом политики агенды.
// Политика "agenda": всегда slots_per_hour агенды. Политика "service":
// услуга с собственной concurrency переопределяет значение агенды.
func EffectiveCapacity(agenda *domain.Agenda, service *domain.Service) int {
	if agenda.CapacityPolicy == domain.CapacityPolicyService && service != nil && service.Concurrency >= 1 {
		return service.Concurrency
	}
	return agenda.Capacity()
}

// CountCommitted считает активные записи, чей интервал пересекает указанный
// бакет. Отменённые записи место не занимают.
func CountCommitted(appointments []*domain.Appointment, bucketIndex, granularityMinutes int) int {
	return CountCommittedExcluding(appointments, 0, bucketIndex, granularityMinutes)
}

// CountCommittedExcluding то же, что CountCommitted, но запись excludeID
// не учитывается. Используется при переносе: старая бронь освобождается
// до проверки нового слота, двойного удержания места не возникает.
func CountCommittedExcluding(appointments []*domain.Appointment, excludeID int64, bucketIndex, granularityMinutes int) int {
	if granularityMinutes <= 0 {
		granularityMinutes = domain.DefaultBucketGranularityMinutes
	}

	bucketStart := bucketIndex * granularityMinutes
	bucketEnd := bucketStart + granularityMinutes

	count := 0
	for _, a := range appointments {
		if !a.IsActive() {
			continue
		}
		if excludeID != 0 && a.ID == excludeID {
			continue
		}

		startMin, err := a.StartTime.MinuteOfDay()
		if err != nil {
			// Запись с нечитаемым временем не может занимать бакет
			continue
		}
		endMin := startMin + a.DurationMinutes

		if startMin < bucketEnd && endMin > bucketStart {
			count++
		}
	}

	return count
}
