package capacity

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded возвращается, когда в бакете не осталось мест
var ErrCapacityExceeded = errors.New("capacity: bucket is full")

// CapacityExceededError несёт идентичность переполненного бакета для
// подсказки клиенту: какой интервал занят и насколько
type CapacityExceededError struct {
	Bucket             Bucket
	GranularityMinutes int
	Capacity           int
	Committed          int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%v: agenda=%d date=%s bucket=%s (%d/%d taken)",
		ErrCapacityExceeded,
		e.Bucket.AgendaID,
		e.Bucket.Date.Format("2006-01-02"),
		e.Bucket.Label(e.GranularityMinutes),
		e.Committed,
		e.Capacity,
	)
}

func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}
