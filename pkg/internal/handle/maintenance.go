package handle

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/internal/types"
	"github.com/yeisme/docshelf/pkg/scheduler"
)

// Orphans 返回对账报告，只报告不删除.
//
//	@Summary		孤儿文件报告
//	@Description	列出上传目录中没有清单记录的文件，以及文件缺失的记录.
//	@Tags			维护
//	@Produce		json
//	@Param			grace	query		string					false	"宽限期，例如 10m"
//	@Success		200		{object}	service.ReconcileReport	"对账报告"
//	@Failure		400		{object}	types.ErrorResponse		"参数错误"
//	@Failure		500		{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/api/maintenance/orphans [get]
func (h *Handlers) Orphans(c *gin.Context) {
	var q types.OrphansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid query", Code: CodeBadParam})

		return
	}

	grace := h.upload.OrphanGrace()

	if q.Grace != "" {
		d, err := time.ParseDuration(q.Grace)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid grace duration", Code: CodeBadParam})

			return
		}

		grace = d
	}

	report, err := h.files.Reconcile(c.Request.Context(), service.ReconcileOptions{Grace: grace})
	if err != nil {
		fail(c, err, "Failed to reconcile files")

		return
	}

	c.JSON(http.StatusOK, report)
}

// Jobs 返回维护任务状态.
//
//	@Summary		维护任务
//	@Tags			维护
//	@Produce		json
//	@Success		200	{object}	types.JobsResponse	"任务列表"
//	@Router			/api/maintenance/jobs [get]
func (h *Handlers) Jobs(c *gin.Context) {
	resp := types.JobsResponse{}
	if h.scheduler != nil {
		resp.Jobs = h.scheduler.GetJobInfos()
	}

	if resp.Jobs == nil {
		resp.Jobs = []scheduler.JobInfo{}
	}

	c.JSON(http.StatusOK, resp)
}
