package domain

import "time"

// CapacityPolicy determines which capacity source wins for a bucket:
// the agenda's slotsPerHour or the booked service's own concurrency.
type CapacityPolicy string

const (
	// CapacityPolicyAgenda: bucket capacity is the agenda's slots_per_hour
	CapacityPolicyAgenda CapacityPolicy = "agenda"
	// CapacityPolicyService: a service that declares its own concurrency
	// overrides the agenda value
	CapacityPolicyService CapacityPolicy = "service"
)

// Agenda represents a calendar belonging to a business unit, with its own
// capacity and schedule. Working-hour rules, service schedule rules and
// block exceptions belong exclusively to their agenda.
type Agenda struct {
	ID          int64
	Name        string
	Description *string

	// Default capacity per time bucket
	SlotsPerHour int

	// Engine options, overriding the service-wide defaults
	CapacityPolicy           CapacityPolicy
	BucketGranularityMinutes int
	DefaultClosedDay         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Granularity возвращает размер capacity-бакета в минутах с учётом дефолта
func (a *Agenda) Granularity() int {
	if a.BucketGranularityMinutes <= 0 {
		return DefaultBucketGranularityMinutes
	}
	return a.BucketGranularityMinutes
}

// Capacity возвращает slots_per_hour с защитой от незаполненного значения
func (a *Agenda) Capacity() int {
	if a.SlotsPerHour < MinSlotsPerHour {
		return MinSlotsPerHour
	}
	return a.SlotsPerHour
}
