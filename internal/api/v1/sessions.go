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

type CreateSessionInput struct {
	Body struct {
		AgentID uuid.UUID `json:"agent_id" doc:"Interviewer persona to run the session with"`
	}
}

type CreateSessionOutput struct {
	Body *domain.InterviewSession
}

type GetSessionInput struct {
	ID uuid.UUID `path:"id" doc:"Session ID"`
}

type GetSessionOutput struct {
	Body *domain.InterviewSession
}

type ListSessionsInput struct{}

type ListSessionsOutput struct {
	Body []*domain.InterviewSession
}

type GetTranscriptInput struct {
	ID uuid.UUID `path:"id" doc:"Session ID"`
}

type GetTranscriptOutput struct {
	Body []*domain.Turn
}

type GetReportInput struct {
	ID uuid.UUID `path:"id" doc:"Session ID"`
}

type GetReportOutput struct {
	Body struct {
		Summary *domain.Summary `json:"summary"`
		Scores  []*domain.Score `json:"scores"`
	}
}

// loadOwnedSession fetches a session and enforces ownership. Admins may read
// any session; everyone else sees a 404 for sessions that are not theirs.
func loadOwnedSession(ctx context.Context, store DataStore, id uuid.UUID) (*domain.InterviewSession, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	sess, err := store.Sessions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("session not found")
		}
		return nil, huma.Error500InternalServerError("failed to get session", err)
	}

	if sess.UserID != userID {
		role, _ := middleware.RoleFromContext(ctx)
		if role != domain.RoleAdmin {
			return nil, huma.Error404NotFound("session not found")
		}
	}

	return sess, nil
}

func RegisterSessionRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-session",
		Method:      http.MethodPost,
		Path:        "/sessions",
		Summary:     "Create a pending interview session",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if _, err := store.Agents().GetByID(ctx, input.Body.AgentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("agent not found")
			}
			return nil, huma.Error500InternalServerError("failed to look up agent", err)
		}

		sess := &domain.InterviewSession{
			ID:        uuid.New(),
			UserID:    userID,
			AgentID:   input.Body.AgentID,
			Status:    domain.SessionStatusPending,
			CreatedAt: time.Now(),
		}

		if err := store.Sessions().Create(ctx, sess); err != nil {
			return nil, huma.Error500InternalServerError("failed to create session", err)
		}

		return &CreateSessionOutput{Body: sess}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/sessions/{id}",
		Summary:     "Get an interview session by ID",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
		sess, err := loadOwnedSession(ctx, store, input.ID)
		if err != nil {
			return nil, err
		}

		return &GetSessionOutput{Body: sess}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-sessions",
		Method:      http.MethodGet,
		Path:        "/sessions",
		Summary:     "List the caller's interview sessions",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, _ *ListSessionsInput) (*ListSessionsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		sessions, err := store.Sessions().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list sessions", err)
		}

		return &ListSessionsOutput{Body: sessions}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transcript",
		Method:      http.MethodGet,
		Path:        "/sessions/{id}/transcript",
		Summary:     "Get the stored transcript of a session",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *GetTranscriptInput) (*GetTranscriptOutput, error) {
		if _, err := loadOwnedSession(ctx, store, input.ID); err != nil {
			return nil, err
		}

		turns, err := store.Turns().ListBySession(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list turns", err)
		}

		return &GetTranscriptOutput{Body: turns}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/sessions/{id}/report",
		Summary:     "Get the evaluation report of a finalized session",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *GetReportInput) (*GetReportOutput, error) {
		if _, err := loadOwnedSession(ctx, store, input.ID); err != nil {
			return nil, err
		}

		summary, err := store.Summaries().GetBySession(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("report not available until the session is finalized")
			}
			return nil, huma.Error500InternalServerError("failed to get summary", err)
		}

		scores, err := store.Scores().ListBySession(ctx, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list scores", err)
		}

		out := &GetReportOutput{}
		out.Body.Summary = summary
		out.Body.Scores = scores
		return out, nil
	})
}
