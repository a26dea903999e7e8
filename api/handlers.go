package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/registryd/errors"
	"github.com/kbukum/registryd/logger"
	"github.com/kbukum/registryd/observability"
	"github.com/kbukum/registryd/registry"
	"github.com/kbukum/registryd/server"
)

// Handler translates registry protocol requests into registry operations.
type Handler struct {
	registry *registry.Registry
	log      *logger.Logger
}

// NewHandler creates a Handler bound to the given registry.
func NewHandler(reg *registry.Registry, log *logger.Logger) *Handler {
	return &Handler{
		registry: reg,
		log:      log.WithComponent("api"),
	}
}

// RegisterRoutes wires the registry protocol routes onto the Gin engine.
// Every unmatched path or verb returns 400 with a fixed message, matching the
// protocol contract.
func RegisterRoutes(engine *gin.Engine, reg *registry.Registry, log *logger.Logger) {
	h := NewHandler(reg, log)

	engine.PUT("/registry/:name/:version/:port", h.Register)
	engine.PATCH("/registry/:name/:version/:port", h.KeepAlive)
	engine.DELETE("/registry/:name/:version/:port", h.Deregister)
	engine.GET("/registry/:name/:version", h.Resolve)
	engine.GET("/registry", h.ListAll)

	engine.NoRoute(h.InvalidRequest)
}

// Register handles PUT /registry/{name}/{version}/{port}.
func (h *Handler) Register(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanRegister)
	defer span.End()

	name, version, port, err := endpointParams(c)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, name)

	entry, err := h.registry.Register(name, version, c.ClientIP(), port)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{
		"message": fmt.Sprintf("Successfully registered %s", entry.Hash()),
	})
}

// KeepAlive handles PATCH /registry/{name}/{version}/{port}.
func (h *Handler) KeepAlive(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanKeepAlive)
	defer span.End()

	name, version, port, err := endpointParams(c)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, name)

	entry, err := h.registry.KeepAlive(name, version, c.ClientIP(), port)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{
		"message": fmt.Sprintf("Successfully updated %s", entry.Hash()),
	})
}

// Deregister handles DELETE /registry/{name}/{version}/{port}.
func (h *Handler) Deregister(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanDeregister)
	defer span.End()

	name, version, port, err := endpointParams(c)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, name)

	entry, err := h.registry.Deregister(name, version, c.ClientIP(), port)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{
		"message": fmt.Sprintf("Successfully deleted %s", entry.Hash()),
	})
}

// Resolve handles GET /registry/{name}/{version}. The version segment is an
// expression: exact ("1.2.3"), major ("1"), or major.minor ("1.2").
func (h *Handler) Resolve(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanResolve)
	defer span.End()

	name := c.Param("name")
	expression := c.Param("version")
	observability.SetSpanAttribute(ctx, observability.AttrServiceName, name)
	observability.SetSpanAttribute(ctx, observability.AttrExpression, expression)

	entry, err := h.registry.Resolve(name, expression)
	if err != nil {
		observability.SetSpanError(ctx, err)
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, gin.H{
		"service": entry.Hash(),
	})
}

// ListAll handles GET /registry.
func (h *Handler) ListAll(c *gin.Context) {
	_, span := observability.StartSpan(c.Request.Context(), observability.SpanListAll)
	defer span.End()

	server.RespondOK(c, gin.H{
		"registry": h.registry.ListAll(),
	})
}

// InvalidRequest is the catch-all for unmatched paths and verbs.
func (h *Handler) InvalidRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "Invalid request format",
	})
}

// endpointParams extracts the name, version, and port path segments shared by
// the register, keep-alive, and deregister routes.
func endpointParams(c *gin.Context) (name, version string, port int, err error) {
	name = c.Param("name")
	version = c.Param("version")

	port, convErr := strconv.Atoi(c.Param("port"))
	if convErr != nil {
		return "", "", 0, apperrors.InvalidField("port", "must be an integer")
	}
	return name, version, port, nil
}
