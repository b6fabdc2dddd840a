package domain

// Default configuration values
const (
	DefaultSlotsPerHour             = 1
	DefaultBucketGranularityMinutes = 60
	DefaultServiceDurationMinutes   = 30
	DefaultConcurrency              = 1
	DefaultClosedDay                = true
)

// Business validation constants
const (
	MinSlotsPerHour             = 1
	MaxSlotsPerHour             = 100
	MinBucketGranularityMinutes = 5
	MaxBucketGranularityMinutes = 240
	MinServiceDurationMinutes   = 5
	MaxServiceDurationMinutes   = 480 // 8 hours
	MinDayOfWeek                = 0   // Monday
	MaxDayOfWeek                = 6   // Sunday
	MaxNotesLength              = 500
	MaxReasonLength             = 500

	MinutesPerDay = 24 * 60
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
