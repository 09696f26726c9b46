package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	userUC "github.com/khoahotran/user-management/internal/application/usecase/user"
	"github.com/khoahotran/user-management/pkg/apperror"
	"github.com/khoahotran/user-management/pkg/logger"
)

type UserHandler struct {
	useCase *userUC.UserUseCase
	logger  logger.Logger
}

func NewUserHandler(uc *userUC.UserUseCase, log logger.Logger) *UserHandler {
	return &UserHandler{useCase: uc, logger: log}
}

// requestLog tags handler log lines with the id set by RequestLogger.
func (h *UserHandler) requestLog(c *gin.Context) logger.Logger {
	return h.logger.With(zap.String("request_id", c.GetString(GinContextKeyRequestID)))
}

func parseUserID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperror.NewInvalidField("id", raw))
		return 0, false
	}
	return id, true
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	var q ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindingError(err, "Invalid paging parameters"))
		return
	}

	out, err := h.useCase.ListUsers(c.Request.Context(), userUC.ListUsersInput{
		MaxRecords: q.MaxRecords,
		Offset:     q.Offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.requestLog(c).Debug("Listed users",
		zap.Int("max_records", out.MaxRecords), zap.Int("offset", out.Offset), zap.Int("returned", len(out.Users)))
	c.JSON(http.StatusOK, ToUserListResponse(out))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	u, err := h.useCase.GetUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err, "Malformed request body"))
		return
	}

	u, err := h.useCase.CreateUser(c.Request.Context(), userUC.CreateUserInput{
		SSN:        req.SSN,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		BirthDate:  parseDate(req.BirthDate),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.requestLog(c).Info("Created user", zap.Int64("user_id", u.ID))
	c.JSON(http.StatusCreated, ToUserResponse(u))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err, "Malformed request body"))
		return
	}

	u, err := h.useCase.UpdateUser(c.Request.Context(), userUC.UpdateUserInput{
		ID:         id,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		BirthDate:  parseDate(req.BirthDate),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.requestLog(c).Info("Updated user", zap.Int64("user_id", id))
	c.JSON(http.StatusOK, ToUserResponse(u))
}

func (h *UserHandler) UpdateUserSettings(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err, "Malformed request body"))
		return
	}

	u, err := h.useCase.UpdateUserSettings(c.Request.Context(), id, req.Settings)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.requestLog(c).Info("Updated user settings", zap.Int64("user_id", id), zap.Int("entries", len(req.Settings)))
	c.JSON(http.StatusOK, ToUserResponse(u))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteUser(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	h.requestLog(c).Info("Deleted user", zap.Int64("user_id", id))
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) RestoreUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	u, err := h.useCase.RestoreUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.requestLog(c).Info("Restored user", zap.Int64("user_id", id))
	c.JSON(http.StatusOK, ToUserResponse(u))
}
