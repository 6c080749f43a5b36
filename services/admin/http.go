package admin

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/nvbf/draft-sync/pkg/auth"
	"github.com/nvbf/draft-sync/pkg/draft"
	gamerecords "github.com/nvbf/draft-sync/repos/gamerecords"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Admin is the interface for the admin service.
type Admin interface {
	Reset(ctx context.Context, draftID, actor string, platformAdmin bool) (*draft.Draft, error)
	Outcomes(ctx context.Context, draftID string) (*gamerecords.OutcomeResponse, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Admin

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.POST("/reset/:draft_id", h.resetHandler)
	r.GET("/outcomes/:draft_id", h.outcomesHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) resetHandler(c *gin.Context) {
	d, err := h.Service.Reset(c, c.Param("draft_id"), auth.UID(c), auth.IsPlatformAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *httpHandler) outcomesHandler(c *gin.Context) {
	outcomes, err := h.Service.Outcomes(c, c.Param("draft_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomes)
}

func respondError(c *gin.Context, err error) {
	var validationErr *draft.ValidationError
	switch {
	case errors.Is(err, draft.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "draft does not exist"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusForbidden, gin.H{"error": validationErr.Msg, "kind": validationErr.Kind})
	default:
		log.Printf("Admin operation failed: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
