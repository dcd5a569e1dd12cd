package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hse-epd/lut-studio/internal/drivers"
)

func (h *Handler) voltages(c *gin.Context) {
	vs, err := h.svc.VoltageSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "voltageSettings": vs})
}

func (h *Handler) saveVoltages(c *gin.Context) {
	var vs drivers.VoltageSettings
	if err := c.ShouldBindJSON(&vs); err != nil {
		badRequest(c, "invalid body")
		return
	}

	p, err := h.svc.SaveVoltageSettings(c.Request.Context(), c.Param("id"), vs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) resetVoltages(c *gin.Context) {
	p, err := h.svc.ResetVoltageSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}
