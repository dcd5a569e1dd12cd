package http

import (
	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/projects/domain"
	"github.com/hse-epd/lut-studio/internal/projects/service"
	"github.com/hse-epd/lut-studio/internal/waveform"
)

// Handler bundles the dependencies for project and driver endpoints.
type Handler struct {
	svc      *service.ProjectService
	registry *drivers.Registry
}

func New(svc *service.ProjectService, registry *drivers.Registry) *Handler {
	return &Handler{svc: svc, registry: registry}
}

// maxImportBytes caps uploaded project files.
const maxImportBytes = 4 << 20

type createReq struct {
	Name      string         `json:"name"`
	ChipModel string         `json:"chipModel"`
	LUTType   domain.LUTType `json:"lutType"`
}

type cellReq struct {
	waveform.Cell
	Level *waveform.Level `json:"level"`
}

type framesReq struct {
	Frames *int `json:"frames"`
}

type freqReq struct {
	Freq *int `json:"freq"`
}

type driverSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Group     drivers.GroupSpec `json:"group"`
	MirrorVGL bool              `json:"mirrorVGL"`
}
