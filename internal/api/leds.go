package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/histonode/internal/api/models"
)

// registerLEDRoutes registers LED control endpoints when the board has a
// controller.
func (s *Server) registerLEDRoutes() {
	ctrl := s.options.LEDController
	if ctrl == nil {
		s.logger.Debug("LED controller not available, skipping LED routes")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "control-led",
		Method:      http.MethodPost,
		Path:        "/api/leds",
		Summary:     "Control LED",
		Description: "Set an LED on or off with an optional pattern. The system LED shows the exposure lock and is overwritten on the next lock change.",
		Tags:        []string{"leds"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 422},
	}, func(_ context.Context, input *models.LEDRequest) (*struct{}, error) {
		if !slices.Contains(ctrl.Available(), input.Body.Type) {
			return nil, huma.Error404NotFound("LED type not available on this board: " + input.Body.Type)
		}
		if err := ctrl.Set(input.Body.Type, input.Body.Enabled, input.Body.Pattern); err != nil {
			return nil, huma.Error400BadRequest("Failed to control LED", err)
		}
		s.logger.Info("LED set", "type", input.Body.Type, "enabled", input.Body.Enabled, "pattern", input.Body.Pattern)
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/capabilities",
		Summary:     "Get LED Capabilities",
		Description: "LED names and patterns available on this board",
		Tags:        []string{"leds"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.LEDCapabilitiesResponse, error) {
		return &models.LEDCapabilitiesResponse{
			Body: models.LEDCapabilities{
				AvailableTypes:    ctrl.Available(),
				AvailablePatterns: ctrl.Patterns(),
			},
		}, nil
	})
}
