package service

import "time"

type options struct {
	now func() time.Time
}

// Option 服务可选项
type Option func(*options)

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
