package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appsync "opsdesk/internal/application/sync"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/interfaces/dto"
	"opsdesk/internal/shared/errors"
	"opsdesk/internal/shared/goroutine"
	"opsdesk/internal/shared/logger"
	"opsdesk/internal/shared/utils"
)

// backgroundRunTimeout bounds a run triggered over HTTP. Full syncs of a
// large tenant can run for a long time under upstream rate limits.
const backgroundRunTimeout = 4 * time.Hour

// SyncService is the engine surface the handler depends on.
type SyncService interface {
	TriggerSync(ctx context.Context, kind syncrun.Kind, opts appsync.TriggerOptions) (appsync.RunSummary, error)
	GetSyncStatus(ctx context.Context) (appsync.Status, error)
	ListRuns(ctx context.Context, limit int) ([]*syncrun.SyncRun, error)
	ForceStop() bool
}

type SyncHandler struct {
	service SyncService
	logger  logger.Interface
}

func NewSyncHandler(service SyncService, logger logger.Interface) *SyncHandler {
	return &SyncHandler{
		service: service,
		logger:  logger,
	}
}

// TriggerSync starts a synchronization run in the background. The run is
// acknowledged immediately; progress is observable via GetSyncStatus.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	var req dto.TriggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for trigger sync", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	kind := req.ParseKind()
	opts, err := req.ParseOptions()
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid time range", err.Error()))
		return
	}
	if kind == syncrun.KindRange && (opts.RangeStart == nil || opts.RangeEnd == nil) {
		utils.ErrorResponseWithError(c, errors.NewValidationError("Range sync requires range_start and range_end"))
		return
	}

	status, err := h.service.GetSyncStatus(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if status.IsRunning {
		utils.ErrorResponseWithError(c, errors.NewConflictError("A sync is already in progress"))
		return
	}

	// The request context dies with the response, so the run gets its own.
	goroutine.SafeGo(h.logger, "http-triggered-sync", func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundRunTimeout)
		defer cancel()

		summary, err := h.service.TriggerSync(ctx, kind, opts)
		if err != nil {
			h.logger.Errorw("background sync failed", "kind", kind, "error", err)
			return
		}
		if summary.Skipped {
			h.logger.Infow("background sync skipped, another run in progress", "kind", kind)
		}
	})

	utils.AcceptedResponse(c, "Sync started", dto.TriggerSyncResponse{Kind: string(kind)})
}

// GetStatus returns whether a run is in flight, its progress, and the
// completion time of the last successful run.
func (h *SyncHandler) GetStatus(c *gin.Context) {
	status, err := h.service.GetSyncStatus(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.SyncStatusFromDomain(status))
}

// ListRuns returns recent run records, newest first.
func (h *SyncHandler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("limit must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	responses := make([]dto.SyncRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, dto.SyncRunFromDomain(run))
	}

	utils.SuccessResponse(c, http.StatusOK, "", responses)
}

// StopSync cancels the in-flight run, if any.
func (h *SyncHandler) StopSync(c *gin.Context) {
	if !h.service.ForceStop() {
		utils.ErrorResponseWithError(c, errors.NewConflictError("No sync is in progress"))
		return
	}

	h.logger.Infow("sync stop requested")
	utils.SuccessResponse(c, http.StatusOK, "Sync stop requested", nil)
}
