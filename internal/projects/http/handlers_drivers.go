package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listDrivers(c *gin.Context) {
	chips := h.registry.All()
	out := make([]driverSummary, 0, len(chips))
	for _, d := range chips {
		out = append(out, driverSummary{ID: d.ID, Name: d.Name, Group: d.Group, MirrorVGL: d.MirrorVGL})
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "drivers": out})
}

// getDriver returns one chip with every rail's selectable voltages.
func (h *Handler) getDriver(c *gin.Context) {
	d, ok := h.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "driver not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"driver":   d,
		"voltages": d.VoltageTables(),
		"defaults": d.DefaultVoltageSettings(),
	})
}
