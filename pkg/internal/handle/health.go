package handle

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/internal/types"
	"github.com/yeisme/docshelf/pkg/log"
)

// Health 检查上传目录、清单以及已启用的外部依赖.
//
//	@Summary		健康检查
//	@Tags			维护
//	@Produce		json
//	@Success		200	{object}	types.HealthResponse	"全部正常"
//	@Failure		503	{object}	types.HealthResponse	"存在异常组件"
//	@Router			/api/health [get]
func (h *Handlers) Health(c *gin.Context) {
	resp := types.HealthResponse{Status: "ok", Components: map[string]types.ComponentHealth{}}

	if h.health != nil {
		for name, err := range h.health.Health(c.Request.Context()) {
			if err != nil {
				log.Ctx(c.Request.Context()).Warn().Err(err).Str("component", name).Msg("health check failed")

				resp.Status = "unhealthy"
				resp.Components[name] = types.ComponentHealth{Status: "unhealthy"}

				continue
			}

			resp.Components[name] = types.ComponentHealth{Status: "ok"}
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}

// TestCORS 供前端确认跨域配置生效.
//
//	@Summary		跨域探测
//	@Tags			维护
//	@Produce		json
//	@Success		200	{object}	types.CORSProbeResponse	"跨域可用"
//	@Router			/api/test-cors [get]
func TestCORS(c *gin.Context) {
	c.JSON(http.StatusOK, types.CORSProbeResponse{
		Message:   "CORS is working correctly",
		Origin:    c.GetHeader("Origin"),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
