// Package http exposes the token lifecycle over a JSON API: issuance, verification,
// revocation and revocation checks.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/signum/internal/httputil"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
	"github.com/allisson/signum/internal/tokens/http/dto"
	tokensService "github.com/allisson/signum/internal/tokens/service"
	tokensUseCase "github.com/allisson/signum/internal/tokens/usecase"
	customValidation "github.com/allisson/signum/internal/validation"
)

// TokenHandler handles HTTP requests for the token lifecycle.
type TokenHandler struct {
	tokenUseCase tokensUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase tokensUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueHandler issues a token and records it as the subject's active token for its class.
// POST /v1/tokens
// Returns 201 Created with the token. Opaque tokens are returned only here.
func (h *TokenHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueTokenOutputToResponse(output))
}

// VerifyHandler checks an encoded-claims token and returns its claims.
// POST /v1/tokens/verify
// Returns 401 when the token is invalid, expired or revoked.
func (h *TokenHandler) VerifyHandler(c *gin.Context) {
	var req dto.VerifyTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Verify(
		c.Request.Context(),
		req.Token,
		tokensDomain.TokenClass(req.TokenClass),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerifyTokenOutputToResponse(output))
}

// VerifyOpaqueHandler checks an opaque token against the active token of a subject and class.
// POST /v1/tokens/verify-opaque
// Returns 401 when the token does not match, has expired or was revoked.
func (h *TokenHandler) VerifyOpaqueHandler(c *gin.Context) {
	var req dto.VerifyOpaqueTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.VerifyOpaque(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapVerifyTokenOutputToResponse(output))
}

// RevokeHandler moves the active token of a subject and class to the revoked registry.
// POST /v1/tokens/revoke
// Returns 404 when the subject has no active token of that class.
func (h *TokenHandler) RevokeHandler(c *gin.Context) {
	var req dto.RevokeTokenRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	subject, err := tokensService.ParseIdentifier(req.Subject)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	revoked, err := h.tokenUseCase.Revoke(
		c.Request.Context(),
		subject,
		tokensDomain.TokenClass(req.TokenClass),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRevokedTokenToResponse(revoked))
}

// RevocationStatusHandler reports whether a token has been revoked.
// GET /v1/tokens/revoked/:subject/:token_id
func (h *TokenHandler) RevocationStatusHandler(c *gin.Context) {
	subject, err := tokensService.ParseIdentifier(c.Param("subject"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	tokenID, err := tokensService.ParseIdentifier(c.Param("token_id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	revoked, err := h.tokenUseCase.IsRevoked(c.Request.Context(), subject, tokenID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevocationStatusResponse{
		Subject: subject.String(),
		TokenID: tokenID.String(),
		Revoked: revoked,
	})
}

// RegisterRoutes mounts the token endpoints on group. issueMiddleware runs only in front of
// the issue endpoint.
func (h *TokenHandler) RegisterRoutes(group *gin.RouterGroup, issueMiddleware ...gin.HandlerFunc) {
	tokens := group.Group("/tokens")
	issue := append(append([]gin.HandlerFunc{}, issueMiddleware...), h.IssueHandler)
	tokens.POST("", issue...)
	tokens.POST("/verify", h.VerifyHandler)
	tokens.POST("/verify-opaque", h.VerifyOpaqueHandler)
	tokens.POST("/revoke", h.RevokeHandler)
	tokens.GET("/revoked/:subject/:token_id", h.RevocationStatusHandler)
}
