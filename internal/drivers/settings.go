package drivers

// VoltageSettings holds one register code per rail. VGL conventionally
// mirrors VGH's code.
type VoltageSettings struct {
	VGH  int `json:"vgh"`
	VGL  int `json:"vgl"`
	VSH  int `json:"vsh"`
	VSHR int `json:"vshr"`
	VSL  int `json:"vsl"`
	VCOM int `json:"vcom"`
}

func (s VoltageSettings) Get(r Rail) int {
	switch r {
	case RailVGH:
		return s.VGH
	case RailVGL:
		return s.VGL
	case RailVSH:
		return s.VSH
	case RailVSHR:
		return s.VSHR
	case RailVSL:
		return s.VSL
	case RailVCOM:
		return s.VCOM
	}
	return 0
}

// MirrorGateLow copies VGH's code into VGL.
func (s VoltageSettings) MirrorGateLow() VoltageSettings {
	s.VGL = s.VGH
	return s
}
