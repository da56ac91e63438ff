package status

import (
	"errors"
	"testing"
	"time"
)

// date возвращает полночь UTC указанного дня.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		expiration time.Time
		window     int
		expected   Status
	}{
		{"вчера — просрочен", date(2026, time.March, 9), 30, Expired},
		{"давно просрочен", date(2025, time.January, 1), 30, Expired},
		{"сегодня — ещё не просрочен", date(2026, time.March, 10), 30, ExpiringSoon},
		{"завтра", date(2026, time.March, 11), 30, ExpiringSoon},
		{"ровно граница окна", date(2026, time.April, 9), 30, ExpiringSoon},
		{"за границей окна", date(2026, time.April, 10), 30, Valid},
		{"далёкое будущее", date(2030, time.January, 1), 30, Valid},
		{"окно 0 — сегодня", date(2026, time.March, 10), 0, ExpiringSoon},
		{"окно 0 — завтра", date(2026, time.March, 11), 0, Valid},
		{"отрицательное окно как 0", date(2026, time.March, 11), -5, Valid},
		{"окно 7 — через неделю", date(2026, time.March, 17), 7, ExpiringSoon},
		{"окно 7 — через 8 дней", date(2026, time.March, 18), 7, Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.expiration, now, tt.window)
			if got != tt.expected {
				t.Errorf("Classify(%s, w=%d) = %q, ожидается %q",
					tt.expiration.Format("2006-01-02"), tt.window, got, tt.expected)
			}
		})
	}
}

// TestClassify_WholeDay проверяет, что статус не зависит от времени суток:
// просрочен ⇔ дата строго раньше текущего дня.
func TestClassify_WholeDay(t *testing.T) {
	today := date(2026, time.June, 1)
	instants := []time.Duration{0, time.Minute, 6 * time.Hour, 12 * time.Hour, 23*time.Hour + 59*time.Minute}

	for _, offset := range instants {
		now := today.Add(offset)

		if got := Classify(today, now, 30); got != ExpiringSoon {
			t.Errorf("now=%s: сегодняшняя дата = %q, ожидается expiring_soon", now, got)
		}
		if got := Classify(today.AddDate(0, 0, -1), now, 30); got != Expired {
			t.Errorf("now=%s: вчерашняя дата = %q, ожидается expired", now, got)
		}
		if got := Classify(today.AddDate(0, 0, 30), now, 30); got != ExpiringSoon {
			t.Errorf("now=%s: +30 дней = %q, ожидается expiring_soon", now, got)
		}
		if got := Classify(today.AddDate(0, 0, 31), now, 30); got != Valid {
			t.Errorf("now=%s: +31 день = %q, ожидается valid", now, got)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		expiration time.Time
		expected   int
	}{
		{date(2026, time.March, 10), 0},
		{date(2026, time.March, 11), 1},
		{date(2026, time.March, 9), -1},
		{date(2026, time.March, 8), -2},
		{date(2026, time.March, 20), 10},
	}

	for _, tt := range tests {
		if got := DaysUntil(tt.expiration, now); got != tt.expected {
			t.Errorf("DaysUntil(%s) = %d, ожидается %d", tt.expiration.Format("2006-01-02"), got, tt.expected)
		}
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		input    []Status
		expected Status
	}{
		{"нет документов", nil, Valid},
		{"один valid", []Status{Valid}, Valid},
		{"один expiring", []Status{ExpiringSoon}, ExpiringSoon},
		{"один expired", []Status{Expired}, Expired},
		{"valid + expiring", []Status{Valid, ExpiringSoon, Valid}, ExpiringSoon},
		{"expired побеждает", []Status{Valid, ExpiringSoon, Expired}, Expired},
		{"expired первым", []Status{Expired, Valid, ExpiringSoon}, Expired},
		{"все valid", []Status{Valid, Valid, Valid}, Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.input...); got != tt.expected {
				t.Errorf("Aggregate(%v) = %q, ожидается %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input    string
		expected Filter
	}{
		{"", FilterAll},
		{"all", FilterAll},
		{"expired", FilterExpired},
		{"EXPIRED", FilterExpired},
		{"expiring", FilterExpiring},
		{"expiring_soon", FilterExpiring},
		{" valid ", FilterValid},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.input)
		if err != nil {
			t.Errorf("ParseFilter(%q) ошибка: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseFilter(%q) = %q, ожидается %q", tt.input, got, tt.expected)
		}
	}

	if _, err := ParseFilter("archived"); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("ParseFilter(archived) ошибка = %v, ожидается ErrUnknownFilter", err)
	}
}

func TestFilter_MatchesAny(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		statuses []Status
		expected bool
	}{
		{"all без документов", FilterAll, nil, true},
		{"expired без документов", FilterExpired, nil, false},
		{"expiring без документов", FilterExpiring, nil, false},
		{"valid без документов", FilterValid, nil, false},
		{"expired совпадает", FilterExpired, []Status{Valid, Expired}, true},
		{"expired не совпадает", FilterExpired, []Status{Valid, ExpiringSoon}, false},
		{"expiring совпадает", FilterExpiring, []Status{ExpiringSoon}, true},
		{"valid при смешанных", FilterValid, []Status{Expired, Valid}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.MatchesAny(tt.statuses); got != tt.expected {
				t.Errorf("%q.MatchesAny(%v) = %v, ожидается %v", tt.filter, tt.statuses, got, tt.expected)
			}
		})
	}
}
