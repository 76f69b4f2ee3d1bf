package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/histonode/internal/api/models"
	"github.com/smazurov/histonode/internal/overlay"
)

// registerOverlayRoutes registers the overlay bitmap endpoint.
func (s *Server) registerOverlayRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-overlay",
		Method:      http.MethodGet,
		Path:        "/api/overlay",
		Summary:     "Overlay Bitmap",
		Description: "The overlay region currently on display and the claim state of every region",
		Tags:        []string{"overlay"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.OverlayResponse, error) {
		data := models.OverlayData{
			Region: -1,
			Width:  overlay.PanelWidth,
			Height: overlay.PanelHeight,
			Panels: overlay.Panels,
		}

		for _, st := range s.options.Registry.States() {
			data.States = append(data.States, st.String())
		}

		if s.options.Reader != nil {
			region, bitmap := s.options.Reader.Snapshot()
			data.Region = region
			if bitmap != nil {
				data.Bitmap = base64.StdEncoding.EncodeToString(bitmap)
			}
		}

		return &models.OverlayResponse{Body: data}, nil
	})
}
