package domain

import "time"

// Service represents an entry of the shared service catalog
type Service struct {
	ID              int64
	Name            string
	Description     *string
	DurationMinutes int
	// Concurrency capacity override; effective only under
	// CapacityPolicyService (see capacity package)
	Concurrency int
	BasePrice   float64
	Color       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Duration возвращает длительность услуги с учётом дефолта
func (s *Service) Duration() int {
	if s.DurationMinutes <= 0 {
		return DefaultServiceDurationMinutes
	}
	return s.DurationMinutes
}

// AgendaServiceOffering binds a catalog service to an agenda with a final
// price. Pricing is outside the engine; the offering is only consulted to
// verify that the service is actually bookable on the agenda.
type AgendaServiceOffering struct {
	ID              int64
	AgendaID        int64
	ServiceID       int64
	DiscountPercent float64
	FinalPrice      float64
	Active          bool
}
