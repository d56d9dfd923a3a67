package api

import (
	"errors"
	"net/http"

	reqdto "skillmesh/internal/handler/dto/request"
	resdto "skillmesh/internal/handler/dto/response"
	"skillmesh/internal/handler/middleware"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionCommands commands.SessionCommands
	sessionQueries  queries.SessionQueries
}

func NewSessionHandler(sessionCommands commands.SessionCommands, sessionQueries queries.SessionQueries) *SessionHandler {
	return &SessionHandler{
		sessionCommands: sessionCommands,
		sessionQueries:  sessionQueries,
	}
}

// @Summary Create session
// @Description Propose a session between a mentor and a learner; the requester is auto-confirmed
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateSessionRequest true "Session request"
// @Success 201 {object} resdto.SessionCreatedResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]any
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateSessionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.sessionCommands.CreateSession(c.Request.Context(), req.ToInput(wallet))
	if err != nil {
		h.renderError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Pending {
		status = http.StatusAccepted
	}
	c.JSON(status, resdto.FromSessionCreated(result))
}

// @Summary Confirm session
// @Description Record the authenticated wallet's confirmation; repeat confirmations are no-ops
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param key path string true "Session key"
// @Success 200 {object} resdto.SessionConfirmResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]any
// @Router /sessions/{key}/confirm [post]
func (h *SessionHandler) ConfirmSession(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	result, err := h.sessionCommands.ConfirmSession(c.Request.Context(), c.Param("key"), wallet)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSessionConfirm(result))
}

// @Summary Reject session
// @Description Record a terminal rejection by the authenticated wallet
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Session key"
// @Param request body reqdto.RejectSessionRequest false "Rejection reason"
// @Success 200 {object} resdto.SessionRejectResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{key}/reject [post]
func (h *SessionHandler) RejectSession(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.RejectSessionRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
	}

	result, err := h.sessionCommands.RejectSession(c.Request.Context(), c.Param("key"), wallet, req.Reason)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSessionReject(result))
}

// @Summary Submit payment
// @Description Attach a payment transaction hash to the session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Session key"
// @Param request body reqdto.SubmitPaymentRequest true "Payment submission"
// @Success 200 {object} resdto.SessionPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sessions/{key}/payment [post]
func (h *SessionHandler) SubmitPayment(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.SubmitPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.sessionCommands.SubmitPayment(c.Request.Context(), c.Param("key"), wallet, req.TxHash)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSessionPayment(result))
}

// @Summary Validate payment
// @Description Verify a submitted payment with the external transaction validator
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Session key"
// @Param request body reqdto.ValidatePaymentRequest true "Payment validation"
// @Success 200 {object} resdto.SessionPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /sessions/{key}/payment/validate [post]
func (h *SessionHandler) ValidatePayment(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.ValidatePaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.sessionCommands.ValidatePayment(c.Request.Context(), c.Param("key"), wallet, req.TxHash)
	if err != nil {
		if errors.Is(err, errs.ErrValidationFailed) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Payment validation failed",
			})
			return
		}
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSessionPayment(result))
}

// @Summary Get session
// @Description Get a session with its derived status
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param key path string true "Session key"
// @Success 200 {object} resdto.SessionResponse
// @Failure 404 {object} map[string]string
// @Router /sessions/{key} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	view, err := h.sessionQueries.GetSession(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromSessionView(view))
}

// @Summary List my sessions
// @Description List sessions where the authenticated wallet is mentor or learner
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.SessionResponse
// @Failure 401 {object} map[string]string
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.sessionQueries.ListSessionsByWallet(c.Request.Context(), wallet)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response := make([]*resdto.SessionResponse, len(views))
	for i := range views {
		response[i] = resdto.FromSessionView(&views[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *SessionHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Session not found",
		})
	case errors.Is(err, errs.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request",
		})
	case errors.Is(err, errs.ErrWriteConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":           "Write outcome unresolved, retry later",
			"concurrentError": true,
		})
	case errors.Is(err, errs.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Store unavailable",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
