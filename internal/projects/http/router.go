package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.POST("/import", h.importProject)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/duplicate", h.duplicate)
	rg.GET("/:id/export", h.export)

	rg.GET("/:id/voltages", h.voltages)
	rg.PUT("/:id/voltages", h.saveVoltages)
	rg.POST("/:id/voltages/reset", h.resetVoltages)

	rg.GET("/:id/waveform", h.waveform)
	rg.PUT("/:id/waveform", h.saveWaveform)
	rg.POST("/:id/waveform/cells/cycle", h.cycleCell)
	rg.PUT("/:id/waveform/cells", h.setCell)
	rg.PUT("/:id/waveform/groups/:group/frames", h.setFrames)
	rg.PUT("/:id/waveform/groups/:group/freq", h.setFreq)

	rg.GET("/:id/code", h.code)
}

// RegisterDrivers attaches the read-only chip catalogue.
func (h *Handler) RegisterDrivers(rg *gin.RouterGroup) {
	rg.GET("", h.listDrivers)
	rg.GET("/:id", h.getDriver)
}
