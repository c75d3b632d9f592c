package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/cryptopulse/backend/internal/config"
	"github.com/cryptopulse/backend/internal/middleware"
	"github.com/cryptopulse/backend/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
	cfg  *config.Config
}

func NewAuthHandler(auth service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type VerifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// @Summary Send a login code
// @Description Sends a one-time 6-digit code to the given phone number via SMS
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body SendCodeRequest true "Phone number"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Missing phone"
// @Failure 500 {object} map[string]string "SMS send failed"
// @Router /auth/send-code [post]
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_required"})
		return
	}

	if err := h.auth.SendCode(c.Request.Context(), req.Phone); err != nil {
		if errors.Is(err, service.ErrPhoneRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone_required"})
			return
		}
		log.Errorf("send code failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sms_send_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary Verify a login code
// @Description Verifies the one-time code and returns a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyCodeRequest true "Phone number and code"
// @Success 200 {object} map[string]interface{} "Verified, includes token"
// @Failure 400 {object} map[string]string "Invalid or expired code"
// @Router /auth/verify-code [post]
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone_and_code_required"})
		return
	}

	if err := h.auth.VerifyCode(c.Request.Context(), req.Phone, req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_or_expired_code"})
		return
	}

	token, err := middleware.GenerateJWT(req.Phone, h.cfg)
	if err != nil {
		log.Errorf("token generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "verified": true, "token": token})
}
