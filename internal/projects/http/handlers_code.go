package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// code renders the project as C. ?format=c|h picks the extension (h by
// default); ?download=1 returns the text as an attachment instead of JSON.
func (h *Handler) code(c *gin.Context) {
	format := c.DefaultQuery("format", "h")
	if format != "c" && format != "h" {
		badRequest(c, "format must be c or h")
		return
	}

	out, err := h.svc.GenerateCode(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		writeError(c, err)
		return
	}

	if c.Query("download") == "1" {
		attachment(c, out.Filename)
		c.Data(http.StatusOK, "text/x-c; charset=utf-8", []byte(out.Code))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "code": out.Code, "filename": out.Filename})
}
