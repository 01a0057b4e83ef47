package poller

import "time"

// Timer 只需要能取消
type Timer interface {
	Stop() bool
}

// Clock 抽象时间来源，测试里用可手动推进的时钟替换
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct {
	loc *time.Location
}

// SystemClock 返回真实时钟；loc 为 nil 时使用本地时区。
// 轮询间隔按 loc 下的小时计算。
func SystemClock(loc *time.Location) Clock {
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	now := time.Now()
	if c.loc != nil {
		return now.In(c.loc)
	}
	return now
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
