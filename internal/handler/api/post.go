package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "skillmesh/internal/handler/dto/request"
	resdto "skillmesh/internal/handler/dto/response"
	"skillmesh/internal/handler/middleware"
	"skillmesh/internal/pkg/errs"
	"skillmesh/internal/usecase/commands"
	"skillmesh/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postCommands commands.PostCommands
	postQueries  queries.PostQueries
}

func NewPostHandler(postCommands commands.PostCommands, postQueries queries.PostQueries) *PostHandler {
	return &PostHandler{
		postCommands: postCommands,
		postQueries:  postQueries,
	}
}

// @Summary Create post
// @Description Publish an ask or offer for the authenticated wallet
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreatePostRequest true "Post request"
// @Success 201 {object} resdto.WriteReceiptResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	wallet, ok := middleware.GetWallet(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreatePostRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	receipt, err := h.postCommands.CreatePost(c.Request.Context(), req.ToInput(wallet))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid post",
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

// @Summary List posts
// @Description List active posts, optionally filtered by kind, skill, or wallet
// @Tags posts
// @Produce json
// @Param kind query string false "ask or offer"
// @Param skill query string false "Skill tag"
// @Param wallet query string false "Author wallet"
// @Param limit query int false "Page size"
// @Success 200 {array} resdto.PostResponse
// @Router /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit",
			})
			return
		}
		limit = parsed
	}

	views, err := h.postQueries.ListPosts(c.Request.Context(), queries.PostFilter{
		Kind:   c.Query("kind"),
		Skill:  c.Query("skill"),
		Wallet: c.Query("wallet"),
		Limit:  limit,
	})
	if err != nil {
		switch {
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

	response := make([]resdto.PostResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromPostView(view)
	}
	c.JSON(http.StatusOK, response)
}
