package user

import (
	"smartkheti_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the /api/users endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("UserHandler"),
	}
}

// RegisterRoutes mounts the user routes on the /users group.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.POST("/register/", h.register)
	router.POST("/login/", h.login)
	router.POST("/request-otp/", h.requestOTP)
	router.POST("/verify-otp/", h.verifyOTP)

	profile := router.Group("/profile")
	profile.Use(authMW)
	{
		profile.GET("/", h.getProfile)
		profile.PUT("/", h.updateProfile)
	}
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Debug("Invalid registration request", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	usr, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "User registered successfully.", ToUserResponse(usr, h.service.PhotoURL))
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	pair, err := h.service.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", pair)
}

func (h *Handler) getProfile(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", ToUserResponse(usr, h.service.PhotoURL))
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID, ok := common.RequireUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	usr, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated successfully.", ToUserResponse(usr, h.service.PhotoURL))
}

func (h *Handler) requestOTP(c *gin.Context) {
	var req RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if err := h.service.RequestOTP(c.Request.Context(), req.Phone); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "If the phone number is registered, an OTP has been sent.", nil)
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if err := h.service.VerifyOTP(c.Request.Context(), req); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Password has been reset successfully.", nil)
}
