package drafts

import (
	"context"
	"errors"
	"io"
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

// Selection is the interface for the selection engine service.
type Selection interface {
	Get(ctx context.Context, draftID string) (*draft.Draft, error)
	Watch(ctx context.Context, draftID string, onChange func(*draft.Draft))
	Select(ctx context.Context, draftID, actor string, request SelectRequest) (*draft.Draft, error)
	Remove(ctx context.Context, draftID, actor string, request RemoveRequest) (*draft.Draft, error)
	ConfirmLock(ctx context.Context, draftID, actor string) (*draft.Draft, error)
	LockSide(ctx context.Context, draftID, actor string, request LockRequest) (*draft.Draft, error)
	StartTimer(ctx context.Context, draftID, actor string) (*draft.Draft, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Selection

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/:draft_id", h.getHandler)
	r.GET("/:draft_id/watch", h.watchHandler)
	r.POST("/:draft_id/select", h.selectHandler)
	r.POST("/:draft_id/remove", h.removeHandler)
	r.POST("/:draft_id/confirm", h.confirmHandler)
	r.POST("/:draft_id/lock", h.lockHandler)
	r.POST("/:draft_id/start-timer", h.startTimerHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) getHandler(c *gin.Context) {
	d, err := h.Service.Get(c, c.Param("draft_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// watchHandler streams pushed state snapshots as server-sent events. Slow
// consumers skip intermediate snapshots; only the latest state matters.
func (h *httpHandler) watchHandler(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates := make(chan *draft.Draft, 1)
	h.Service.Watch(ctx, c.Param("draft_id"), func(d *draft.Draft) {
		select {
		case updates <- d:
		default:
		}
	})

	c.Stream(func(w io.Writer) bool {
		select {
		case d := <-updates:
			c.SSEvent("state", d)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (h *httpHandler) selectHandler(c *gin.Context) {
	var request SelectRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	d, err := h.Service.Select(c, c.Param("draft_id"), auth.UID(c), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) removeHandler(c *gin.Context) {
	var request RemoveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	d, err := h.Service.Remove(c, c.Param("draft_id"), auth.UID(c), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) confirmHandler(c *gin.Context) {
	d, err := h.Service.ConfirmLock(c, c.Param("draft_id"), auth.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) lockHandler(c *gin.Context) {
	var request LockRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	d, err := h.Service.LockSide(c, c.Param("draft_id"), auth.UID(c), request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) startTimerHandler(c *gin.Context) {
	d, err := h.Service.StartTimer(c, c.Param("draft_id"), auth.UID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func respondError(c *gin.Context, err error) {
	var validationErr *draft.ValidationError
	var concurrencyErr *draft.ConcurrencyError
	var stateErr *draft.StateError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft does not exist"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg, "kind": validationErr.Kind})
	case errors.As(err, &concurrencyErr):
		c.JSON(http.StatusConflict, gin.H{"error": concurrencyErr.Msg})
	case errors.As(err, &stateErr):
		log.Printf("State contract violation: %v\n", err)
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Msg})
	default:
		log.Printf("Draft operation failed: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
