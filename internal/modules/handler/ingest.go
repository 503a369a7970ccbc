package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scanstack-io/Scantree/internal/modules/serializer"
	"github.com/scanstack-io/Scantree/internal/modules/service"
	"go.uber.org/zap"
)

type IngestHandler struct {
	rec service.Reconciler
	log *zap.Logger
}

func NewIngestHandler(rec service.Reconciler, log *zap.Logger) *IngestHandler {
	return &IngestHandler{rec: rec, log: log}
}

// Ingest folds one metadata record into the hierarchy and, when the record
// carries file metadata, attaches it to the resulting acquisition (updating an
// entry with the same name, appending otherwise).
func (h *IngestHandler) Ingest(c *gin.Context) {
	ctx := c.Request.Context()

	var md service.IngestMetadata
	if err := c.ShouldBindJSON(&md); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	ra, err := h.rec.Reconcile(ctx, md)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			// The offending payload goes to the log, not just the reply.
			h.log.Error("rejected ingestion record",
				zap.String("reason", verr.Reason),
				zap.Any("metadata", verr.Metadata))
			c.JSON(http.StatusBadRequest, serializer.ParamErr(verr.Reason, err))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	if md.File != nil && md.File.Name != "" {
		if existing := ra.FindFile(md.File.Name); existing != nil {
			err = ra.UpdateFile(ctx, *md.File)
		} else {
			err = ra.AddFile(ctx, *md.File)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}
	}

	c.JSON(http.StatusOK, serializer.Response{Data: ra.Acquisition, Msg: "ok"})
}
