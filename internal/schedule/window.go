package schedule

import (
	"sort"

	"github.com/duvan51/agenda-booking-engine/internal/domain"
	"github.com/duvan51/agenda-booking-engine/pkg/types"
)

// Window открытый интервал внутри суток в минутах, полуинтервал [Start, End)
type Window struct {
	Start int
	End   int
}

// Contains возвращает true, если минута попадает в окно
func (w Window) Contains(minute int) bool {
	return minute >= w.Start && minute < w.End
}

// IsEmpty возвращает true для вырожденного окна
func (w Window) IsEmpty() bool {
	return w.End <= w.Start
}

// StartTime возвращает начало окна как TimeString
func (w Window) StartTime() types.TimeString {
	return types.FromMinuteOfDay(w.Start)
}

// EndTime возвращает конец окна как TimeString ("24:00" для конца суток)
func (w Window) EndTime() types.TimeString {
	if w.End >= domain.MinutesPerDay {
		return types.TimeString("24:00")
	}
	return types.FromMinuteOfDay(w.End)
}

// fullDay окно на все сутки
func fullDay() Window {
	return Window{Start: 0, End: domain.MinutesPerDay}
}

// normalize сортирует окна и склеивает пересекающиеся и смежные
func normalize(windows []Window) []Window {
	filtered := make([]Window, 0, len(windows))
	for _, w := range windows {
		if !w.IsEmpty() {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return filtered
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Start == filtered[j].Start {
			return filtered[i].End < filtered[j].End
		}
		return filtered[i].Start < filtered[j].Start
	})

	merged := []Window{filtered[0]}
	for _, w := range filtered[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}

// subtract вырезает интервал из набора окон
func subtract(windows []Window, cut Window) []Window {
	if cut.IsEmpty() {
		return windows
	}

	result := make([]Window, 0, len(windows)+1)
	for _, w := range windows {
		// Нет пересечения
		if cut.End <= w.Start || cut.Start >= w.End {
			result = append(result, w)
			continue
		}
		// Левый остаток
		if cut.Start > w.Start {
			result = append(result, Window{Start: w.Start, End: cut.Start})
		}
		// Правый остаток
		if cut.End < w.End {
			result = append(result, Window{Start: cut.End, End: w.End})
		}
	}

	return result
}

// add добавляет интервал к набору окон
func add(windows []Window, w Window) []Window {
	if w.IsEmpty() {
		return windows
	}
	return normalize(append(windows, w))
}

// windowContaining возвращает окно, содержащее минуту, или пустое окно
func windowContaining(windows []Window, minute int) (Window, bool) {
	for _, w := range windows {
		if w.Contains(minute) {
			return w, true
		}
	}
	return Window{}, false
}
