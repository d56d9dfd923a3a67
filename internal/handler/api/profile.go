package api

import (
	"errors"
	"net/http"

	reqdto "skillmesh/internal/handler/dto/request"
	resdto "skillmesh/internal/handler/dto/response"
	"skillmesh/internal/handler/middleware"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/resolve"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileCommands commands.ProfileCommands
	profileQueries  queries.ProfileQueries
}

func NewProfileHandler(profileCommands commands.ProfileCommands, profileQueries queries.ProfileQueries) *ProfileHandler {
	return &ProfileHandler{
		profileCommands: profileCommands,
		profileQueries:  profileQueries,
	}
}

// @Summary Upsert profile
// @Description Append a new profile version for the authenticated wallet
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.UpsertProfileRequest true "Profile request"
// @Success 201 {object} resdto.WriteReceiptResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]any
// @Router /profiles [post]
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.UpsertProfileRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	receipt, err := h.profileCommands.UpsertProfile(c.Request.Context(), req.ToInput(wallet))
	if err != nil {
		var conflict *resolve.UniqueConflictError
		switch {
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Username already taken",
				"field": conflict.Field,
				"value": conflict.Value,
			})
		case errors.Is(err, errs.ErrValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid profile",
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
		return
	}

	status := http.StatusCreated
	if receipt.Pending {
		status = http.StatusAccepted
	}
	c.JSON(status, resdto.FromWriteReceipt(receipt))
}

// @Summary Get profile
// @Description Get the canonical profile for a wallet
// @Tags profiles
// @Produce json
// @Param wallet path string true "Wallet address"
// @Success 200 {object} resdto.ProfileResponse
// @Failure 404 {object} map[string]string
// @Router /profiles/{wallet} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	view, err := h.profileQueries.GetProfile(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		h.renderQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromProfileView(view))
}

// @Summary Get profile history
// @Description List every profile version ever written for a wallet, newest first
// @Tags profiles
// @Produce json
// @Param wallet path string true "Wallet address"
// @Success 200 {array} resdto.ProfileRevisionResponse
// @Failure 400 {object} map[string]string
// @Router /profiles/{wallet}/history [get]
func (h *ProfileHandler) GetProfileHistory(c *gin.Context) {
	revisions, err := h.profileQueries.GetProfileHistory(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		h.renderQueryError(c, err)
		return
	}

	response := make([]resdto.ProfileRevisionResponse, len(revisions))
	for i, rev := range revisions {
		response[i] = resdto.FromProfileRevision(rev)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Delete profile
// @Description Write a deletion marker for the authenticated wallet's profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.WriteReceiptResponse
// @Failure 404 {object} map[string]string
// @Router /profiles [delete]
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	receipt, err := h.profileCommands.DeleteProfile(c.Request.Context(), wallet)
	if err != nil {
		h.renderWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromWriteReceipt(receipt))
}

// @Summary Set availability
// @Description Replace the authenticated wallet's availability schedule
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.SetAvailabilityRequest true "Availability request"
// @Success 201 {object} resdto.WriteReceiptResponse
// @Failure 400 {object} map[string]string
// @Router /profiles/availability [put]
func (h *ProfileHandler) SetAvailability(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.SetAvailabilityRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	receipt, err := h.profileCommands.SetAvailability(c.Request.Context(), req.ToInput(wallet))
	if err != nil {
		h.renderWriteError(c, err)
		return
	}

	status := http.StatusCreated
	if receipt.Pending {
		status = http.StatusAccepted
	}
	c.JSON(status, resdto.FromWriteReceipt(receipt))
}

// @Summary Get availability
// @Description Get the canonical availability schedule for a wallet
// @Tags profiles
// @Produce json
// @Param wallet path string true "Wallet address"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 404 {object} map[string]string
// @Router /profiles/{wallet}/availability [get]
func (h *ProfileHandler) GetAvailability(c *gin.Context) {
	view, err := h.profileQueries.GetAvailability(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		h.renderQueryError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

func (h *ProfileHandler) renderQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Profile not found",
		})
	case errors.Is(err, errs.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid wallet address",
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

func (h *ProfileHandler) renderWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Profile not found",
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
