package crosscheck

import (
	"fmt"
	"strings"
)

// ValidationError 请求本身不合法，未发起任何上游调用
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// FetchError 单 token 重试耗尽。Partial 为 true 表示已拿到部分数据，
// 查询可以带着不完整数据继续
type FetchError struct {
	Token   string
	Pages   int // 成功拉到的页数
	Partial bool
	Err     error
}

func (e *FetchError) Error() string {
	if e.Partial {
		return fmt.Sprintf("fetch %s degraded after %d pages: %v", e.Token, e.Pages, e.Err)
	}
	return fmt.Sprintf("fetch %s failed with no records: %v", e.Token, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// TimeoutError 整体墙钟超时，Pending 记录未完成的 token
type TimeoutError struct {
	Pending []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("cross-check timed out, unfinished tokens: %s", strings.Join(e.Pending, ", "))
}

// OrchestrationError 可归因到具体 token 的查询级失败
type OrchestrationError struct {
	Token string
	Err   error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("cross-check aborted on token %s: %v", e.Token, e.Err)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}
