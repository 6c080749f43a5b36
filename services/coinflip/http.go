package coinflip

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/nvbf/draft-sync/pkg/auth"
	"github.com/nvbf/draft-sync/pkg/draft"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// CoinFlip is the interface for the coin flip service.
type CoinFlip interface {
	Ready(ctx context.Context, draftID, actor string) (*draft.Draft, error)
	Choose(ctx context.Context, draftID, actor string, choice draft.TurnChoice) (*draft.Draft, error)
	Cancel(ctx context.Context, draftID, actor string) (*draft.Draft, error)
}

// ChooseRequest is the winner's order pick.
type ChooseRequest struct {
	Choice draft.TurnChoice `json:"choice" binding:"required"`
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service CoinFlip

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/:draft_id/ready", h.readyHandler)
	r.POST("/:draft_id/choose", h.chooseHandler)
	r.POST("/:draft_id/cancel", h.cancelHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) readyHandler(c *gin.Context) {
	d, err := h.Service.Ready(c, c.Param("draft_id"), auth.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) chooseHandler(c *gin.Context) {
	var request ChooseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	d, err := h.Service.Choose(c, c.Param("draft_id"), auth.UID(c), request.Choice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) cancelHandler(c *gin.Context) {
	d, err := h.Service.Cancel(c, c.Param("draft_id"), auth.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func respondError(c *gin.Context, err error) {
	var validationErr *draft.ValidationError
	var stateViolation *draft.StateError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft does not exist"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg, "kind": validationErr.Kind})
	case errors.As(err, &stateViolation):
		log.Printf("State contract violation: %v\n", err)
		c.JSON(http.StatusConflict, gin.H{"error": stateViolation.Msg})
	default:
		log.Printf("Coin flip operation failed: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
