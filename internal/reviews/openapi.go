package reviews

import "github.com/JaimeStill/verdict/pkg/openapi"

var classifyOp = &openapi.Operation{
	Summary:     "Classify a review",
	Description: "Classifies the review text as positive or negative and appends the result to the log when persistence is available. A failed log write still returns 200 with persisted=false.",
	RequestBody: openapi.RequestBodyJSON("ClassifyRequest", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Classification outcome", "Outcome"),
		400: openapi.ResponseRef("BadRequest"),
		422: openapi.ResponseRef("UnprocessableEntity"),
		502: openapi.ResponseRef("BadGateway"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var listOp = &openapi.Operation{
	Summary: "List classification log entries",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Substring match on the review text", false),
		openapi.QueryParam("sort", "string", "Sort fields, e.g. -LogID", false),
		openapi.QueryParam("classification", "string", "positive or negative", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Log entry page", "LogEntryPage"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var searchOp = &openapi.Operation{
	Summary:     "Search classification log entries",
	RequestBody: openapi.RequestBodyJSON("LogSearchRequest", true),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Log entry page", "LogEntryPage"),
		400: openapi.ResponseRef("BadRequest"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var findOp = &openapi.Operation{
	Summary:    "Find a classification log entry",
	Parameters: []*openapi.Parameter{openapi.PathParam("id", "Log id", &openapi.Schema{Type: "integer", Format: "int64"})},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Log entry", "LogEntry"),
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

func schemas() map[string]*openapi.Schema {
	label := &openapi.Schema{Type: "string", Enum: []any{string(Positive), string(Negative)}}

	return map[string]*openapi.Schema{
		"ClassifyRequest": {
			Type:     "object",
			Required: []string{"text"},
			Properties: map[string]*openapi.Schema{
				"text": {Type: "string", Example: "사장님이 너무 친절하시고 서비스도 좋아서 다음에도 꼭 주문하고 싶어요!"},
			},
		},
		"Outcome": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"status":        {Type: "string", Example: StatusAccepted},
				"label":         label,
				"display":       {Type: "string", Example: Positive.Display()},
				"confidence":    {Type: "number", Format: "double", Example: 0.97},
				"persisted":     {Type: "boolean"},
				"persist_error": {Type: "string", Enum: []any{ErrStoreUnavailable.Error(), ErrRelationMissing.Error(), ErrSequenceMissing.Error(), ErrStoreFailed.Error()}},
				"log_id":        {Type: "integer", Format: "int64"},
			},
		},
		"LogEntry": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"log_id":         {Type: "integer", Format: "int64"},
				"user_query":     {Type: "string"},
				"classification": label,
				"confidence":     {Type: "number", Format: "double"},
				"created_at":     {Type: "string", Format: "date-time"},
			},
		},
		"LogEntryPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("LogEntry")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
		"LogSearchRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":           {Type: "integer"},
				"page_size":      {Type: "integer"},
				"search":         {Type: "string"},
				"sort":           {Type: "string"},
				"classification": label,
			},
		},
	}
}
