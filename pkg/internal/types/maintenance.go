package types

import (
	"github.com/yeisme/docshelf/pkg/scheduler"
)

// OrphansQuery 对账接口的查询参数，grace 为 Go duration 字符串.
type OrphansQuery struct {
	Grace string `form:"grace" rule:"omitempty,max=32"`
}

// JobsResponse 维护任务列表.
type JobsResponse struct {
	Jobs []scheduler.JobInfo `json:"jobs"`
}

// ComponentHealth 单个组件的健康状态.
type ComponentHealth struct {
	Status string `json:"status"`
}

// HealthResponse 健康检查响应.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// CORSProbeResponse 跨域探测响应.
type CORSProbeResponse struct {
	Message   string `json:"message"`
	Origin    string `json:"origin"`
	Timestamp string `json:"timestamp"`
}
