// cmd/content-lambda/main.go
package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"content-creator/internal/api"
	"content-creator/internal/app"
	"content-creator/internal/common/config"
	"content-creator/internal/common/logger"
)

type handler struct {
	generator api.Generator
	logger    logger.Logger
}

// handle answers an API Gateway proxy event with the same envelope as the
// HTTP server.
func (h *handler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Handler panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			resp = response(api.ErrorEnvelope(fmt.Sprint(r)))
			err = nil
		}
	}()

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, decErr := base64.StdEncoding.DecodeString(req.Body)
		if decErr != nil {
			return response(api.ErrorEnvelope(decErr.Error())), nil
		}
		body = decoded
	}

	out := h.generator.Handle(ctx, body)
	return response(api.Envelope(out)), nil
}

func response(status int, body []byte) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(api.Headers))
	for k, v := range api.Headers {
		headers[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}
	log := logger.FromConfig(cfg)

	// Collaborators are built once per container and reused across invocations.
	application, err := app.Build(context.Background(), cfg, log, app.OneShotOptions)
	if err != nil {
		zap.NewExample().Fatal("pipeline init failed", zap.Error(err))
	}
	defer application.Close()

	h := &handler{generator: application.Pipeline, logger: log}
	lambda.Start(h.handle)
}
