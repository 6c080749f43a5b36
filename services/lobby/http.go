package lobby

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

// Lobby is the interface for the lobby service.
type Lobby interface {
	Create(ctx context.Context, organizer string, request CreateRequest) (*draft.Draft, error)
	Join(ctx context.Context, draftID, uid string) (*draft.Draft, error)
	Shuffle(ctx context.Context, draftID, actor string, request ShuffleRequest) (*draft.Draft, error)
	Finalize(ctx context.Context, draftID string) (*draft.Draft, bool, error)
	Advance(ctx context.Context, draftID, actor string) (*draft.Draft, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Lobby

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/create", h.createHandler)
	r.POST("/join/:draft_id", h.joinHandler)
	r.POST("/shuffle/:draft_id", h.shuffleHandler)
	r.POST("/finalize/:draft_id", h.finalizeHandler)
	r.POST("/advance/:draft_id", h.advanceHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	d, err := h.Service.Create(c, auth.UID(c), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *httpHandler) joinHandler(c *gin.Context) {
	d, err := h.Service.Join(c, c.Param("draft_id"), auth.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) shuffleHandler(c *gin.Context) {
	var request ShuffleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	d, err := h.Service.Shuffle(c, c.Param("draft_id"), auth.UID(c), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) finalizeHandler(c *gin.Context) {
	d, changed, err := h.Service.Finalize(c, c.Param("draft_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusOK, gin.H{"message": "already processed", "status": d.Status})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) advanceHandler(c *gin.Context) {
	d, err := h.Service.Advance(c, c.Param("draft_id"), auth.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func respondError(c *gin.Context, err error) {
	var validationErr *draft.ValidationError
	var concurrencyErr *draft.ConcurrencyError
	var stateViolation *draft.StateError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft does not exist"})
	case errors.As(err, &validationErr):
		status := http.StatusBadRequest
		if validationErr.Kind == draft.KindInsufficientFunds {
			status = http.StatusPaymentRequired
		}
		c.JSON(status, gin.H{"error": validationErr.Msg, "kind": validationErr.Kind})
	case errors.As(err, &concurrencyErr):
		c.JSON(http.StatusConflict, gin.H{"error": concurrencyErr.Msg})
	case errors.As(err, &stateViolation):
		log.Printf("State contract violation: %v\n", err)
		c.JSON(http.StatusConflict, gin.H{"error": stateViolation.Msg})
	default:
		log.Printf("Lobby operation failed: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
