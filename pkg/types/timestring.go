package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeString время дня в формате "HH:MM" (без даты и таймзоны).
// Используется для времени начала записи и границ рабочих окон.
// Postgres-колонки типа time сканируются с отбрасыванием секунд.
type TimeString string

var ErrInvalidTimeString = errors.New("types: invalid time string format, expected HH:MM")

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format("15:04"))
}

// NewTimeStringFromString парсит строку "HH:MM" в TimeString
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(normalize(s))
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// String возвращает строковое представление "HH:MM"
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет формат "HH:MM"
func (t TimeString) Validate() error {
	if _, err := time.Parse("15:04", string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// MinuteOfDay возвращает количество минут с начала суток (0..1439)
func (t TimeString) MinuteOfDay() (int, error) {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FromMinuteOfDay создает TimeString из количества минут с начала суток
func FromMinuteOfDay(minutes int) TimeString {
	if minutes < 0 {
		minutes = 0
	}
	minutes %= 24 * 60
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
}

// AddMinutes возвращает время, сдвинутое на minutes вперед.
// Переход через полночь не поддерживается: "23:30" + 60 вернет ошибку,
// рабочие окна агенды не пересекают границу суток.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	m, err := t.MinuteOfDay()
	if err != nil {
		return "", err
	}
	total := m + minutes
	if total > 24*60 {
		return "", fmt.Errorf("%w: %q + %d minutes crosses midnight", ErrInvalidTimeString, string(t), minutes)
	}
	if total == 24*60 {
		// "24:00" как правая граница последнего окна дня
		return TimeString("24:00"), nil
	}
	return FromMinuteOfDay(total), nil
}

// IsBefore строгое сравнение: t < other
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter строгое сравнение: t > other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// Scan реализует sql.Scanner: принимает "HH:MM:SS" / "HH:MM" из Postgres
func (t *TimeString) Scan(value interface{}) error {
	if value == nil {
		*t = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = TimeString(normalize(v))
	case []byte:
		*t = TimeString(normalize(string(v)))
	case time.Time:
		*t = NewTimeString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidTimeString, value)
	}
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// normalize обрезает секунды: "10:00:00" -> "10:00"
func normalize(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}
