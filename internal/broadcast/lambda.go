package broadcast

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
)

// HandleLambdaEvent is the Lambda entry point. It accepts a direct invocation
// payload, an API Gateway proxy event or a function URL event.
func (h *Handler) HandleLambdaEvent(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	resp := h.Dispatch(ctx, event)
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(resp.JSON()),
	}, nil
}
