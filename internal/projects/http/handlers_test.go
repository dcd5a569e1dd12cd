package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/kvstore"
	"github.com/hse-epd/lut-studio/internal/projects/domain"
	"github.com/hse-epd/lut-studio/internal/projects/repository"
	"github.com/hse-epd/lut-studio/internal/projects/service"
	"github.com/hse-epd/lut-studio/internal/waveform"
)

type testAPI struct {
	router *gin.Engine
	kv     *kvstore.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kv := kvstore.NewMemoryStore()
	registry := drivers.NewRegistry()
	repo := repository.Open(context.Background(), kv)
	h := New(service.NewProjectService(repo, registry), registry)

	r := gin.New()
	api := r.Group("/api/v1")
	h.Register(api.Group("/projects"))
	h.RegisterDrivers(api.Group("/drivers"))
	return &testAPI{router: r, kv: kv}
}

func (a *testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

type projectResp struct {
	OK      bool           `json:"ok"`
	Error   string         `json:"error"`
	Project domain.Project `json:"project"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func (a *testAPI) create(t *testing.T, name string) domain.Project {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/api/v1/projects", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[projectResp](t, rr).Project
}

func TestProjectCRUD(t *testing.T) {
	api := newTestAPI(t)

	p := api.create(t, "Panel A")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, drivers.SSD1677ID, p.ChipModel)

	rr := api.do(t, http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Projects []domain.Project `json:"projects"`
	}](t, rr)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, p.ID, list.Projects[0].ID)

	rr = api.do(t, http.MethodPatch, "/api/v1/projects/"+p.ID, `{"name":"Panel B"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Panel B", decode[projectResp](t, rr).Project.Name)

	rr = api.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/duplicate", "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Panel B (copy)", decode[projectResp](t, rr).Project.Name)

	rr = api.do(t, http.MethodDelete, "/api/v1/projects/"+p.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/v1/projects/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, decode[projectResp](t, rr).OK)

	stored, err := api.kv.Load(context.Background(), repository.StorageKey)
	require.NoError(t, err)
	var persisted []domain.Project
	require.NoError(t, json.Unmarshal(stored, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "Panel B (copy)", persisted[0].Name)
}

func TestCreate_BadRequests(t *testing.T) {
	api := newTestAPI(t)

	cases := map[string]string{
		"empty name":   `{"name":"  "}`,
		"not json":     `{`,
		"unknown chip": `{"name":"x","chipModel":"nope"}`,
		"bad lut type": `{"name":"x","lutType":5}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := api.do(t, http.MethodPost, "/api/v1/projects", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestExportImport(t *testing.T) {
	api := newTestAPI(t)
	p := api.create(t, "Panel")

	rr := api.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=Panel.json", rr.Header().Get("Content-Disposition"))
	exported := rr.Body.String()

	t.Run("raw body", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/v1/projects/import", exported)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		got := decode[projectResp](t, rr).Project
		assert.NotEqual(t, p.ID, got.ID)
		assert.Equal(t, "Panel (imported)", got.Name)
		assert.Equal(t, p.Config, got.Config)
	})

	t.Run("multipart", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "Panel.json")
		require.NoError(t, err)
		_, err = fw.Write([]byte(exported))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := httptest.NewRecorder()
		api.router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})

	t.Run("malformed", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/v1/projects/import", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestVoltageEndpoints(t *testing.T) {
	api := newTestAPI(t)
	p := api.create(t, "Panel")

	rr := api.do(t, http.MethodPut, "/api/v1/projects/"+p.ID+"/voltages",
		`{"vgh":15,"vgl":3,"vsh":65,"vshr":158,"vsl":44,"vcom":52}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	vs := decode[projectResp](t, rr).Project.Config.VoltageSettings
	assert.Equal(t, 15, vs.VGH)
	assert.Equal(t, 15, vs.VGL)

	rr = api.do(t, http.MethodPut, "/api/v1/projects/"+p.ID+"/voltages",
		`{"vgh":1,"vsh":65,"vshr":158,"vsl":44,"vcom":52}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPut, "/api/v1/projects/"+p.ID+"/voltages", `{"vgh":"high"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPost, "/api/v1/projects/"+p.ID+"/voltages/reset", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/voltages", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[struct {
		VoltageSettings drivers.VoltageSettings `json:"voltageSettings"`
	}](t, rr)
	assert.Equal(t, drivers.SSD1677().DefaultVoltageSettings(), got.VoltageSettings)
}

func TestWaveformEndpoints(t *testing.T) {
	api := newTestAPI(t)
	p := api.create(t, "Panel")
	base := "/api/v1/projects/" + p.ID + "/waveform"

	rr := api.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	wf := decode[struct {
		Waveform waveform.Matrix `json:"waveform"`
		Stats    waveform.Stats  `json:"stats"`
	}](t, rr)
	assert.Len(t, wf.Waveform.Groups, waveform.GroupCount)
	assert.Equal(t, waveform.Default().Stats(), wf.Stats)

	rr = api.do(t, http.MethodPut, base+"/cells", `{"group":1,"kind":"LUTB","subPhase":"S1_2","frame":0,"level":3}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodPost, base+"/cells/cycle", `{"group":1,"kind":"LUTB","subPhase":"S1_2","frame":0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[struct {
		Level int `json:"level"`
	}](t, rr).Level)

	rr = api.do(t, http.MethodPut, base+"/groups/2/frames", `{"frames":8}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodPut, base+"/groups/2/freq", `{"freq":120}`)
	require.Equal(t, http.StatusOK, rr.Code)
	m := decode[struct {
		Waveform waveform.Matrix `json:"waveform"`
	}](t, rr).Waveform
	assert.Equal(t, 8, m.Groups[1].Frames)
	assert.Equal(t, 120, m.Groups[1].Freq)

	bad := map[string][2]string{
		"non numeric frames": {base + "/groups/2/frames", `{"frames":"many"}`},
		"missing frames":     {base + "/groups/2/frames", `{}`},
		"frames too large":   {base + "/groups/2/frames", `{"frames":256}`},
		"non numeric group":  {base + "/groups/two/freq", `{"freq":10}`},
		"group out of range": {base + "/groups/11/freq", `{"freq":10}`},
		"freq zero":          {base + "/groups/2/freq", `{"freq":0}`},
		"bad level":          {base + "/cells", `{"group":1,"kind":"LUTB","subPhase":"S1_2","frame":0,"level":4}`},
		"bad kind":           {base + "/cells", `{"group":1,"kind":"LUTX","subPhase":"S1_2","frame":0,"level":1}`},
	}
	for name, tc := range bad {
		t.Run(name, func(t *testing.T) {
			rr := api.do(t, http.MethodPut, tc[0], tc[1])
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	rr = api.do(t, http.MethodGet, base, "")
	after := decode[struct {
		Waveform waveform.Matrix `json:"waveform"`
	}](t, rr).Waveform
	assert.Equal(t, m, after)
}

func TestCodeEndpoint(t *testing.T) {
	api := newTestAPI(t)
	p := api.create(t, "Demo")
	base := "/api/v1/projects/" + p.ID + "/code"

	rr := api.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode[service.GeneratedCode](t, rr)
	assert.Equal(t, "Demo_lut_config.h", out.Filename)
	assert.Contains(t, out.Code, "lut_group_config_t")

	rr = api.do(t, http.MethodGet, base+"?format=c&download=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=Demo_lut_config.c", rr.Header().Get("Content-Disposition"))
	assert.Equal(t, out.Code, rr.Body.String())

	rr = api.do(t, http.MethodGet, base+"?format=py", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	t.Run("ragged imported matrix", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/v1/projects/import",
			`{"name":"Ragged","config":{"lutData":{"groups":[{"id":1,"frames":2,"freq":50,"waveforms":{"LUTW":{"S1_1":[1,2,3,0,1]}}}]}}}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		id := decode[projectResp](t, rr).Project.ID

		rr = api.do(t, http.MethodGet, "/api/v1/projects/"+id+"/code?format=c", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, decode[projectResp](t, rr).OK)
	})

	t.Run("imported voltage outside chip table", func(t *testing.T) {
		rr := api.do(t, http.MethodPost, "/api/v1/projects/import",
			`{"name":"Hot","config":{"voltageSettings":{"vgh":1,"vgl":1,"vsh":65,"vshr":158,"vsl":44,"vcom":52}}}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		id := decode[projectResp](t, rr).Project.ID

		rr = api.do(t, http.MethodGet, "/api/v1/projects/"+id+"/code?download=1", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, rr.Header().Get("Content-Disposition"))
	})
}

func TestDownloadFilenames(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		export string
		code   string
	}{
		{"Panel 2", `attachment; filename="Panel 2.json"`, "attachment; filename=Panel_2_lut_config.h"},
		{"Écran", "attachment; filename*=utf-8''%C3%89cran.json", "attachment; filename*=utf-8''%C3%89cran_lut_config.h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := api.create(t, tt.name)

			rr := api.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/export", "")
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.export, rr.Header().Get("Content-Disposition"))

			rr = api.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/code?download=1", "")
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.code, rr.Header().Get("Content-Disposition"))
		})
	}
}

func TestDriverEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/v1/drivers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[struct {
		Drivers []driverSummary `json:"drivers"`
	}](t, rr)
	require.Len(t, list.Drivers, 1)
	assert.Equal(t, drivers.SSD1677ID, list.Drivers[0].ID)

	rr = api.do(t, http.MethodGet, "/api/v1/drivers/ssd1677", "")
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[struct {
		Driver   drivers.DriverICConfig                    `json:"driver"`
		Voltages map[drivers.Rail][]drivers.VoltageOption `json:"voltages"`
	}](t, rr)
	require.NotEmpty(t, detail.Voltages[drivers.RailVGH])
	assert.Equal(t, drivers.VoltageOption{Code: 0x03, MilliVolts: 10000}, detail.Voltages[drivers.RailVGH][0])
	assert.Equal(t, "full", detail.Driver.LUTType)
	assert.Equal(t, drivers.SSD1677().Temperature, detail.Driver.Temperature)

	rr = api.do(t, http.MethodGet, "/api/v1/drivers/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
