package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scanstack-io/Scantree/internal/modules/serializer"
	"github.com/scanstack-io/Scantree/internal/modules/service"
	"go.uber.org/zap"
)

type ContainerHandler struct {
	resolver *service.ReferenceResolver
	log      *zap.Logger
}

func NewContainerHandler(resolver *service.ReferenceResolver, log *zap.Logger) *ContainerHandler {
	return &ContainerHandler{resolver: resolver, log: log}
}

// Get resolves a container by (type, id). With user and check query
// parameters it also enforces that the user outranks the given access level
// on the container.
func (h *ContainerHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	doc, err := h.resolver.Resolve(ctx, c.Param("type"), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, serializer.NotFoundErr(""))
		case errors.Is(err, service.ErrPluralContainerType):
			c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), err))
		default:
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	if required := c.Query("check"); required != "" {
		if err := h.resolver.CheckAccess(c.Query("user"), doc, required); err != nil {
			c.JSON(http.StatusForbidden, serializer.ForbiddenErr(""))
			return
		}
	}

	c.JSON(http.StatusOK, serializer.Response{Data: doc, Msg: "ok"})
}
