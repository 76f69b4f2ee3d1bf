package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/histonode/internal/api/models"
	"github.com/smazurov/histonode/internal/nvm"
)

// registerExposureRoutes registers the exposure lock endpoint.
func (s *Server) registerExposureRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "put-exposure-lock",
		Method:      http.MethodPut,
		Path:        "/api/exposure/lock",
		Summary:     "Exposure Lock",
		Description: "Engage or release exposure lock. While locked the live pair is mirrored into the lock shadow and metering is suspended.",
		Tags:        []string{"exposure"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, input *models.LockRequest) (*models.LockResponse, error) {
		ctrl := s.options.Pass.Controller()
		changed := ctrl.SetLock(input.Body.Locked)

		return &models.LockResponse{
			Body: models.LockData{
				Locked:  ctrl.Locked(),
				Changed: changed,
				ISO:     s.options.Store.Get(nvm.ISOLock),
				Shutter: s.options.Store.Get(nvm.ShutterLock),
			},
		}, nil
	})
}
