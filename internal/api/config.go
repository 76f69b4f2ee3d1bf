package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/histonode/internal/api/models"
	"github.com/smazurov/histonode/internal/events"
	"github.com/smazurov/histonode/internal/nvm"
)

// registerConfigRoutes registers the settings store endpoints.
func (s *Server) registerConfigRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-config",
		Method:      http.MethodGet,
		Path:        "/api/config",
		Summary:     "Get Settings",
		Description: "All settings fields by name",
		Tags:        []string{"configuration"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.ConfigResponse, error) {
		data := models.ConfigData{Values: nvm.Snapshot(s.options.Store)}
		if p, ok := s.options.Store.(interface{ Path() string }); ok {
			data.Path = p.Path()
		}
		return &models.ConfigResponse{Body: data}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "put-config-field",
		Method:      http.MethodPut,
		Path:        "/api/config/{field}",
		Summary:     "Set Settings Field",
		Description: "Write one settings field. Unchanged values are not persisted. Writing exp_lock toggles exposure lock from bit 0.",
		Tags:        []string{"configuration"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(_ context.Context, input *models.ConfigFieldRequest) (*models.ConfigFieldResponse, error) {
		idx, ok := nvm.Lookup(input.Field)
		if !ok {
			return nil, huma.Error404NotFound("Unknown settings field: " + input.Field)
		}

		var changed bool
		if idx == nvm.ExpLock {
			changed = s.options.Pass.Controller().SetLock(input.Body.Value&1 != 0)
		} else {
			changed = s.options.Store.Set(idx, input.Body.Value)
		}

		if p, ok := s.options.Store.(interface{ Err() error }); ok && changed {
			if err := p.Err(); err != nil {
				return nil, huma.Error500InternalServerError("Failed to persist settings", err)
			}
		}

		value := s.options.Store.Get(idx)
		if changed {
			s.logger.Info("Settings field updated", "field", idx.String(), "value", value)
			if s.eventBus != nil {
				s.eventBus.Publish(events.SettingsChangedEvent{
					Field:     idx.String(),
					Value:     value,
					Source:    "api",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}

		return &models.ConfigFieldResponse{
			Body: models.ConfigFieldData{
				Field:   idx.String(),
				Value:   value,
				Changed: changed,
			},
		}, nil
	})
}
