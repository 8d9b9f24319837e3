package gameengine

import "time"

// Clock источник текущего времени для движка
type Clock interface {
	Now() time.Time
}

// SystemClock возвращает системное время
type SystemClock struct{}

// Now реализует Clock
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc позволяет использовать обычную функцию как Clock
type ClockFunc func() time.Time

// Now реализует Clock
func (f ClockFunc) Now() time.Time {
	return f()
}
