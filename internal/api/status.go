package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/histonode/internal/api/models"
	"github.com/smazurov/histonode/internal/device"
	"github.com/smazurov/histonode/internal/nvm"
	"github.com/smazurov/histonode/internal/pipeline"
	"github.com/smazurov/histonode/internal/status"
)

// registerStatusRoutes registers the live status and histogram endpoints.
func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Status",
		Description: "Live exposure, capture phase and the outcome of the most recent pass",
		Tags:        []string{"status"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{Body: s.statusData()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-histogram",
		Method:      http.MethodGet,
		Path:        "/api/histogram",
		Summary:     "Histogram",
		Description: "The four 128-bin histograms of the most recent processed pass with per-channel statistics",
		Tags:        []string{"status"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.HistogramResponse, error) {
		last := s.options.Pass.LastProcessed()
		h := &last.Histogram
		return &models.HistogramResponse{
			Body: models.HistogramData{
				Frame:   last.Frame,
				Total:   h.Total,
				Luma:    h.Luma[:],
				Red:     h.Red[:],
				Green:   h.Green[:],
				Blue:    h.Blue[:],
				Summary: h.SummarizeAll(),
			},
		}, nil
	})
}

func (s *Server) statusData() models.StatusData {
	host := s.options.Host
	ctrl := s.options.Pass.Controller()
	pair := host.Exposure()
	qp := host.QP()
	last := s.options.Pass.Last()

	data := models.StatusData{
		Phase:         device.PhaseOf(host).String(),
		FrameNumber:   host.FrameNumber(),
		EncodedFrames: host.EncodedFrames(),
		Exposure: models.ExposureData{
			ISO:     pair.ISO,
			Shutter: pair.Shutter,
			Quantum: pair.Quantum(),
			Locked:  ctrl.Locked(),
			Power:   ctrl.Power(),
		},
		QP:          status.DisplayQP(qp),
		EffectiveQP: status.EffectiveQP(qp, s.options.Store.Get(nvm.QPMin)),
		Pass:        passData(last),
	}

	if last.PanelDrawn {
		for r := range status.Rows {
			data.Panel = append(data.Panel, last.Panel.Line(r))
		}
	}
	return data
}

func passData(res pipeline.Result) models.PassData {
	d := models.PassData{
		Frame:      res.Frame,
		Skipped:    res.Skipped(),
		SkipReason: string(res.Reason),
		Region:     res.Region,
		Buffer:     res.Buffer,
		DurationUs: res.Duration.Microseconds(),
	}
	if !res.At.IsZero() {
		d.At = res.At.Format(time.RFC3339)
	}
	if !res.Skipped() && !res.At.IsZero() {
		d.Zones = res.Zones
		decision := res.Decision
		d.Decision = &decision
	}
	return d
}
