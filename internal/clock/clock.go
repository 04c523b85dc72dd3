package clock

import "time"

// Clock 讓 service 可以注入時間來源，測試時用固定時間
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem 回傳以 time.Now 為準的 clock（UTC）
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed 回傳固定時間的 clock，測試用
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}
