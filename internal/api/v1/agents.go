package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/parleylabs/parley/internal/domain"
	"github.com/parleylabs/parley/internal/server/middleware"
)

type CreateAgentInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Display name of the interviewer persona"`
		Personality string `json:"personality" minLength:"1" doc:"Free-text persona description fed to the LLM"`
		Industry    string `json:"industry,omitempty" maxLength:"100" doc:"Industry focus (e.g. fintech)"`
		Level       string `json:"level,omitempty" maxLength:"50" doc:"Seniority the persona interviews for"`
		Voice       string `json:"voice" minLength:"1" maxLength:"100" doc:"TTS voice identifier"`
		SystemNotes string `json:"system_notes,omitempty" doc:"Extra instructions appended to the system prompt"`
	}
}

type CreateAgentOutput struct {
	Body *domain.InterviewAgent
}

type GetAgentInput struct {
	ID uuid.UUID `path:"id" doc:"Agent ID"`
}

type GetAgentOutput struct {
	Body *domain.InterviewAgent
}

type ListAgentsInput struct{}

type ListAgentsOutput struct {
	Body []*domain.InterviewAgent
}

type DeleteAgentInput struct {
	ID uuid.UUID `path:"id" doc:"Agent ID"`
}

// requireAdmin guards persona mutations. Reads the role injected by the Auth
// middleware.
func requireAdmin(ctx context.Context) error {
	role, ok := middleware.RoleFromContext(ctx)
	if !ok || role != domain.RoleAdmin {
		return huma.Error403Forbidden("admin role required")
	}
	return nil
}

func RegisterAgentRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-agent",
		Method:      http.MethodPost,
		Path:        "/agents",
		Summary:     "Create an interviewer persona",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *CreateAgentInput) (*CreateAgentOutput, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		agent := &domain.InterviewAgent{
			ID:          uuid.New(),
			Name:        input.Body.Name,
			Personality: input.Body.Personality,
			Industry:    input.Body.Industry,
			Level:       input.Body.Level,
			Voice:       input.Body.Voice,
			SystemNotes: input.Body.SystemNotes,
			CreatedAt:   time.Now(),
		}

		if err := store.Agents().Create(ctx, agent); err != nil {
			return nil, huma.Error500InternalServerError("failed to create agent", err)
		}

		return &CreateAgentOutput{Body: agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-agent",
		Method:      http.MethodGet,
		Path:        "/agents/{id}",
		Summary:     "Get an interviewer persona by ID",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *GetAgentInput) (*GetAgentOutput, error) {
		agent, err := store.Agents().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("agent not found")
			}
			return nil, huma.Error500InternalServerError("failed to get agent", err)
		}

		return &GetAgentOutput{Body: agent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-agents",
		Method:      http.MethodGet,
		Path:        "/agents",
		Summary:     "List interviewer personas",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, _ *ListAgentsInput) (*ListAgentsOutput, error) {
		agents, err := store.Agents().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list agents", err)
		}

		return &ListAgentsOutput{Body: agents}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-agent",
		Method:      http.MethodDelete,
		Path:        "/agents/{id}",
		Summary:     "Delete an interviewer persona",
		Tags:        []string{"Agents"},
	}, func(ctx context.Context, input *DeleteAgentInput) (*struct{}, error) {
		if err := requireAdmin(ctx); err != nil {
			return nil, err
		}

		if err := store.Agents().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("agent not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete agent", err)
		}

		return nil, nil
	})
}
