package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legalease/internal/middleware"
	"legalease/internal/models"
	"legalease/internal/service"
)

type signupRequest struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

type identityResponse struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

func toIdentityResponse(identity models.Identity) identityResponse {
	return identityResponse{
		ID:         identity.ID,
		Role:       string(identity.Role),
		Email:      identity.Email,
		FirstName:  identity.Name.First,
		MiddleName: identity.Name.Middle,
		LastName:   identity.Name.Last,
	}
}

func (h HandlerSet) signup(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		if !h.bindJSON(c, &req) {
			return
		}

		input := service.RegisterInput{
			Role:       role,
			FirstName:  req.FirstName,
			MiddleName: req.MiddleName,
			LastName:   req.LastName,
			Email:      req.Email,
			Password:   req.Password,
		}
		if role == models.RoleClient {
			input.PhoneNumber = req.PhoneNumber
		}

		identity, err := h.auth.Register(c.Request.Context(), input)
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   true,
			"message":  "account created",
			"identity": toIdentityResponse(identity),
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h HandlerSet) login(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if !h.bindJSON(c, &req) {
			return
		}

		result, err := h.auth.Authenticate(c.Request.Context(), service.LoginInput{
			Role:      role,
			Email:     req.Email,
			Password:  req.Password,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
		if err != nil {
			h.respondError(c, err)
			return
		}

		h.setSessionCookie(c, result.Token, result.ExpiresAt)
		c.JSON(http.StatusOK, gin.H{
			"status":    true,
			"message":   "logged in",
			"token":     result.Token,
			"expiresAt": result.ExpiresAt.UTC(),
			"identity":  toIdentityResponse(result.Identity),
		})
	}
}

func (h HandlerSet) VerifyLawyer(c *gin.Context) {
	lawyerID, _ := middleware.Principal(c).LawyerID()
	c.JSON(http.StatusOK, gin.H{"status": true, "lawyerId": lawyerID})
}

func (h HandlerSet) VerifyClient(c *gin.Context) {
	clientID, _ := middleware.Principal(c).ClientID()
	c.JSON(http.StatusOK, gin.H{"status": true, "userId": clientID})
}

// Logout clears the cookie even when the session could not be revoked, so a
// browser never keeps a token the caller asked to drop.
func (h HandlerSet) Logout(c *gin.Context) {
	token := middleware.Token(c)
	h.clearSessionCookie(c)

	if token != "" {
		if err := h.auth.Revoke(c.Request.Context(), token); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "logged out"})
}

func (h HandlerSet) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, token, maxAge, "/", "", h.cfg.Security.CookieSecure, true)
}

func (h HandlerSet) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, "", -1, "/", "", h.cfg.Security.CookieSecure, true)
}
