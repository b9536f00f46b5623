package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookerapp/booker-server/internal/http/response"
)

// pagedBody is implemented by list responses whose items go in data and
// whose paging information goes in meta.
type pagedBody interface {
	envelopeData() any
	envelopeMeta() any
}

// MessageBody is a response that carries only a message.
type MessageBody struct {
	Message string `json:"message" doc:"Status message"`
}

// EnvelopeTransformer wraps every response body in response.Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case nil:
		return response.Envelope{Success: true}, nil
	case *APIError:
		return response.Envelope{Error: body.Code, Message: body.Message, Details: body.Details}, nil
	case error:
		code, _ := strconv.Atoi(status)
		return response.Envelope{Error: statusToCode(code), Message: body.Error()}, nil
	case MessageBody:
		return response.Envelope{Success: true, Message: body.Message}, nil
	case *MessageBody:
		return response.Envelope{Success: true, Message: body.Message}, nil
	case pagedBody:
		return response.Envelope{Success: true, Data: body.envelopeData(), Meta: body.envelopeMeta()}, nil
	default:
		return response.Envelope{Success: true, Data: v}, nil
	}
}
