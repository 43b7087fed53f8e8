package chat

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/verdict/pkg/handlers"
	"github.com/JaimeStill/verdict/pkg/openapi"
	"github.com/JaimeStill/verdict/pkg/routes"
)

// Handler provides HTTP endpoints for chat sessions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "chat"),
	}
}

// Routes returns the route group definition for chat endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/chat",
		Tags:        []string{"Chat"},
		Description: "Conversational review classification",
		Schemas:     schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/sessions", Handler: h.Create, OpenAPI: createOp},
			{Method: "GET", Pattern: "/sessions/{id}", Handler: h.Find, OpenAPI: findOp},
			{Method: "POST", Pattern: "/sessions/{id}/messages", Handler: h.Send, OpenAPI: sendOp},
		},
	}
}

// Create starts a new session and returns it with 201.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Create(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, s)
}

// Find returns the transcript for the session id path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// Send decodes a SendRequest body and returns the exchanged messages.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var req SendRequest
	if status, err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	reply, err := h.sys.Send(r.Context(), id, req.Text)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, reply)
}

var sessionID = openapi.PathParam("id", "Session id", &openapi.Schema{Type: "string", Format: "uuid"})

var createOp = &openapi.Operation{
	Summary: "Start a chat session",
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("New session with greeting", "ChatSession"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Get a chat transcript",
	Parameters: []*openapi.Parameter{sessionID},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Session transcript", "ChatSession"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var sendOp = &openapi.Operation{
	Summary:     "Send a review to a chat session",
	Description: "Classifies the review and appends the user message and the assistant's verdict. Classifier failures are answered in the transcript rather than as errors.",
	Parameters:  []*openapi.Parameter{sessionID},
	RequestBody: openapi.RequestBodyJSON("ChatSendRequest", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Exchanged messages", "ChatReply"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		422: openapi.ResponseRef("UnprocessableEntity"),
	},
}

func schemas() map[string]*openapi.Schema {
	message := &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"role":       {Type: "string", Enum: []any{string(RoleUser), string(RoleAssistant)}},
			"content":    {Type: "string"},
			"created_at": {Type: "string", Format: "date-time"},
		},
	}

	return map[string]*openapi.Schema{
		"ChatMessage": message,
		"ChatSession": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"messages":   {Type: "array", Items: openapi.SchemaRef("ChatMessage")},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"ChatSendRequest": {
			Type:     "object",
			Required: []string{"text"},
			Properties: map[string]*openapi.Schema{
				"text": {Type: "string", Example: "주문한 메뉴가 잘못 왔고, 포장이 엉망이라 다 식어서 왔네요."},
			},
		},
		"ChatReply": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"messages": {Type: "array", Items: openapi.SchemaRef("ChatMessage")},
				"outcome":  openapi.SchemaRef("Outcome"),
			},
		},
	}
}
