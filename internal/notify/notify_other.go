//go:build !windows

package notify

// NewNotifier 创建通知器
func NewNotifier() Notifier {
	return Console{}
}
