// Пакет status — классификация документов по сроку истечения.
// Документ находится в одном из трёх состояний: valid, expiring_soon, expired.
// Статус комнаты — максимальный по строгости статус её документов:
// expired > expiring_soon > valid (комната без документов — valid).
package status

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Status — состояние документа относительно даты истечения.
type Status string

const (
	// Valid — до истечения больше окна предупреждения
	Valid Status = "valid"
	// ExpiringSoon — до истечения от 0 до окна предупреждения дней включительно
	ExpiringSoon Status = "expiring_soon"
	// Expired — дата истечения уже прошла
	Expired Status = "expired"
)

// DefaultWarnWindowDays — окно предупреждения по умолчанию.
const DefaultWarnWindowDays = 30

// Clock возвращает текущий момент времени. Подменяется в тестах.
type Clock func() time.Time

// SystemClock — часы реального времени.
func SystemClock() time.Time {
	return time.Now()
}

// severity — вес статуса для агрегации.
var severity = map[Status]int{
	Valid:        0,
	ExpiringSoon: 1,
	Expired:      2,
}

const day = 24 * time.Hour

// DaysUntil возвращает количество дней до expiration, округлённое вверх.
// Документ, истекающий сегодня позже или раньше текущего момента, даёт 0.
func DaysUntil(expiration, now time.Time) int {
	diff := expiration.Sub(now)
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Classify вычисляет статус документа для момента now.
// Отрицательное окно предупреждения приравнивается к нулю.
func Classify(expiration, now time.Time, warnWindowDays int) Status {
	if warnWindowDays < 0 {
		warnWindowDays = 0
	}

	days := DaysUntil(expiration, now)
	switch {
	case days < 0:
		return Expired
	case days <= warnWindowDays:
		return ExpiringSoon
	default:
		return Valid
	}
}

// ClassifyNow — Classify относительно текущего времени.
func ClassifyNow(expiration time.Time, warnWindowDays int) Status {
	return Classify(expiration, time.Now(), warnWindowDays)
}

// Aggregate возвращает наиболее строгий статус из набора.
// Пустой набор — Valid.
func Aggregate(statuses ...Status) Status {
	result := Valid
	for _, s := range statuses {
		if severity[s] > severity[result] {
			result = s
		}
	}
	return result
}

// IsKnown сообщает, является ли значение известным статусом.
func (s Status) IsKnown() bool {
	_, ok := severity[s]
	return ok
}

// String реализует fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Filter — фильтр списка комнат по статусу документов.
type Filter string

const (
	// FilterAll — без фильтрации
	FilterAll Filter = "all"
	// FilterExpired — комнаты с хотя бы одним просроченным документом
	FilterExpired Filter = "expired"
	// FilterExpiring — комнаты с хотя бы одним истекающим документом
	FilterExpiring Filter = "expiring"
	// FilterValid — комнаты с хотя бы одним действующим документом
	FilterValid Filter = "valid"
)

// ErrUnknownFilter — неизвестное значение фильтра.
var ErrUnknownFilter = errors.New("неизвестный фильтр статуса")

// ParseFilter разбирает значение фильтра. Пустая строка — FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterExpired:
		return FilterExpired, nil
	case FilterExpiring, Filter(ExpiringSoon):
		return FilterExpiring, nil
	case FilterValid:
		return FilterValid, nil
	default:
		return FilterAll, fmt.Errorf("%w: %q, допустимые: all, expired, expiring, valid", ErrUnknownFilter, s)
	}
}

// Status возвращает статус, которому соответствует фильтр.
// Для FilterAll второй результат false.
func (f Filter) Status() (Status, bool) {
	switch f {
	case FilterExpired:
		return Expired, true
	case FilterExpiring:
		return ExpiringSoon, true
	case FilterValid:
		return Valid, true
	default:
		return "", false
	}
}

// Matches сообщает, проходит ли документ со статусом s через фильтр.
func (f Filter) Matches(s Status) bool {
	want, ok := f.Status()
	if !ok {
		return true
	}
	return s == want
}

// MatchesAny сообщает, проходит ли через фильтр хотя бы один статус набора.
// Для FilterAll — всегда true; для остальных пустой набор не проходит.
func (f Filter) MatchesAny(statuses []Status) bool {
	if f == FilterAll || f == "" {
		return true
	}
	for _, s := range statuses {
		if f.Matches(s) {
			return true
		}
	}
	return false
}
