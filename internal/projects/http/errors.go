package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/projects/domain"
	"github.com/hse-epd/lut-studio/internal/waveform"
)

var badRequestErrs = []error{
	domain.ErrNameRequired,
	domain.ErrInvalidProjectFile,
	domain.ErrInvalidLUTType,
	drivers.ErrUnknownChip,
	drivers.ErrInvalidVoltage,
	waveform.ErrOutOfRange,
	waveform.ErrInvalidLevel,
	waveform.ErrInvalidFrames,
	waveform.ErrInvalidFreq,
	waveform.ErrInvalidShape,
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"ok": false, "error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
