package cloudfunction

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/lumiforge/adpilot-backend/internal/bootstrap"
)

// CloudFunctionRequest структура запроса от API Gateway
type CloudFunctionRequest struct {
	HTTPMethod        string            `json:"httpMethod"`
	Headers           map[string]string `json:"headers"`
	Path              string            `json:"path"`
	QueryStringParams map[string]string `json:"queryStringParameters"`
	Body              string            `json:"body"`
	IsBase64Encoded   bool              `json:"isBase64Encoded"`
}

// CloudFunctionResponse структура ответа для API Gateway
type CloudFunctionResponse struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

var (
	app      *bootstrap.App
	initOnce bool
)

// Handler - главная функция для Cloud Function
func Handler(ctx context.Context, request []byte) ([]byte, error) {
	// Инициализация при первом вызове (холодный старт)
	if !initOnce {
		a, err := bootstrap.Initialize(ctx)
		if err != nil {
			return respondError(500, "Failed to initialize: "+err.Error())
		}
		app = a
		initOnce = true
		slog.Info("Cloud Function initialized successfully")
	}

	// Парсинг запроса от API Gateway
	var cfReq CloudFunctionRequest
	if err := json.Unmarshal(request, &cfReq); err != nil {
		slog.Error("Failed to parse request", "error", err)
		return respondError(400, "Invalid request format")
	}

	// Вызов без httpMethod приходит от таймер-триггера, а не от API Gateway
	if cfReq.HTTPMethod == "" {
		return handleTimerTrigger(ctx)
	}

	slog.Info("Processing request",
		"method", cfReq.HTTPMethod,
		"path", cfReq.Path,
	)

	// Создаём HTTP запрос из Cloud Function request
	httpReq, err := buildHTTPRequest(&cfReq)
	if err != nil {
		slog.Error("Failed to build HTTP request", "error", err)
		return respondError(400, "Failed to build request")
	}

	// Создаём ResponseRecorder для захвата ответа
	rr := httptest.NewRecorder()

	// Обрабатываем запрос через роутер
	app.Router.ServeHTTP(rr, httpReq)

	// Конвертируем HTTP response в Cloud Function response
	return buildCloudFunctionResponse(rr), nil
}

// handleTimerTrigger запускает регулярную уборку: переводит подписки с
// истекшим grace окном в expired. Прогон идемпотентен, параллельный запуск
// безопасен.
func handleTimerTrigger(ctx context.Context) ([]byte, error) {
	result, err := app.Subscriptions.ExpireGraceSweep(ctx, time.Now().UTC())
	if err != nil {
		slog.Error("Grace expiry sweep failed", "error", err)
		return respondError(500, "Sweep failed: "+err.Error())
	}

	slog.Info("Grace expiry sweep completed", "expired", result.Count)

	body, _ := json.Marshal(result)
	response := CloudFunctionResponse{
		StatusCode: 200,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(body),
	}
	return json.Marshal(response)
}

// buildHTTPRequest - создание HTTP запроса из Cloud Function request
func buildHTTPRequest(cfReq *CloudFunctionRequest) (*http.Request, error) {
	// Создаём body reader
	var bodyReader io.Reader
	if cfReq.Body != "" {
		bodyReader = bytes.NewBufferString(cfReq.Body)
	}

	// Создаём HTTP запрос
	req, err := http.NewRequest(cfReq.HTTPMethod, cfReq.Path, bodyReader)
	if err != nil {
		return nil, err
	}

	// Добавляем заголовки
	for key, value := range cfReq.Headers {
		req.Header.Set(key, value)
	}

	// Добавляем query parameters
	if len(cfReq.QueryStringParams) > 0 {
		q := req.URL.Query()
		for key, value := range cfReq.QueryStringParams {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	return req, nil
}

// buildCloudFunctionResponse - создание Cloud Function response из HTTP response
func buildCloudFunctionResponse(rr *httptest.ResponseRecorder) []byte {
	// Конвертируем заголовки
	headers := make(map[string]string)
	for key, values := range rr.Header() {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	// Создаём response
	response := CloudFunctionResponse{
		StatusCode:      rr.Code,
		Headers:         headers,
		Body:            rr.Body.String(),
		IsBase64Encoded: false,
	}

	// Сериализуем в JSON
	respData, _ := json.Marshal(response)
	return respData
}

// respondError - вспомогательная функция для ответа об ошибке
func respondError(statusCode int, message string) ([]byte, error) {
	errorBody := map[string]string{
		"error": message,
	}
	body, _ := json.Marshal(errorBody)

	response := CloudFunctionResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body:            string(body),
		IsBase64Encoded: false,
	}

	return json.Marshal(response)
}
