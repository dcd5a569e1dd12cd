package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hse-epd/lut-studio/internal/waveform"
)

func (h *Handler) waveform(c *gin.Context) {
	m, err := h.svc.Waveform(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "waveform": m, "stats": m.Stats()})
}

func (h *Handler) saveWaveform(c *gin.Context) {
	var m waveform.Matrix
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, "invalid body")
		return
	}

	p, err := h.svc.SaveWaveform(c.Request.Context(), c.Param("id"), &m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) cycleCell(c *gin.Context) {
	var req cellReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	level, err := h.svc.CycleCell(c.Request.Context(), c.Param("id"), req.Cell)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "level": level})
}

func (h *Handler) setCell(c *gin.Context) {
	var req cellReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Level == nil {
		badRequest(c, "invalid body")
		return
	}

	m, err := h.svc.SetCell(c.Request.Context(), c.Param("id"), req.Cell, *req.Level)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "waveform": m})
}

func groupParam(c *gin.Context) (int, bool) {
	g, err := strconv.Atoi(c.Param("group"))
	if err != nil {
		badRequest(c, "group must be a number")
		return 0, false
	}
	return g, true
}

func (h *Handler) setFrames(c *gin.Context) {
	group, ok := groupParam(c)
	if !ok {
		return
	}
	var req framesReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Frames == nil {
		badRequest(c, "frames must be a number")
		return
	}

	m, err := h.svc.SetFrames(c.Request.Context(), c.Param("id"), group, *req.Frames)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "waveform": m})
}

func (h *Handler) setFreq(c *gin.Context) {
	group, ok := groupParam(c)
	if !ok {
		return
	}
	var req freqReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Freq == nil {
		badRequest(c, "freq must be a number")
		return
	}

	m, err := h.svc.SetFreq(c.Request.Context(), c.Param("id"), group, *req.Freq)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "waveform": m})
}
