package response

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/event-planner-client/common/errors"
)

// CORS Headers for API responses
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type,Authorization",
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SuccessResponse creates a success response
func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse creates an error response
func ErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

// MessageResponse creates a message-only response
func MessageResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}

// ToJSON converts response to JSON string
func (r APIResponse) ToJSON() (string, error) {
	bytes, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ============================================================
// Lambda proxy responses
// ============================================================

// JSON wraps data in a success envelope
func JSON(statusCode int, data interface{}) (events.APIGatewayProxyResponse, error) {
	return write(statusCode, SuccessResponse(data))
}

// Error renders err as an error envelope with the status its code maps to
func Error(err error) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.ToAppError(err)
	return write(appErr.HTTPStatus, APIResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    string(appErr.Code),
	})
}

// ErrorWithData renders err but still carries a payload, e.g. the page after a refused action
func ErrorWithData(err error, data interface{}) (events.APIGatewayProxyResponse, error) {
	appErr := apperrors.ToAppError(err)
	return write(appErr.HTTPStatus, APIResponse{
		Success: false,
		Data:    data,
		Error:   appErr.Message,
		Code:    string(appErr.Code),
	})
}

// HTML returns a rendered page
func HTML(statusCode int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    withCORS(map[string]string{"Content-Type": "text/html; charset=utf-8"}),
		Body:       body,
	}
}

// Binary returns a base64-encoded body as API Gateway expects for non-text payloads
func Binary(contentType, filename string, data []byte) events.APIGatewayProxyResponse {
	headers := map[string]string{"Content-Type": contentType}
	if filename != "" {
		headers["Content-Disposition"] = `inline; filename="` + filename + `"`
	}
	return events.APIGatewayProxyResponse{
		StatusCode:      http.StatusOK,
		Headers:         withCORS(headers),
		Body:            base64.StdEncoding.EncodeToString(data),
		IsBase64Encoded: true,
	}
}

func write(statusCode int, body APIResponse) (events.APIGatewayProxyResponse, error) {
	payload, err := body.ToJSON()
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    withCORS(map[string]string{"Content-Type": "application/json"}),
			Body:       `{"success":false,"error":"Internal server error"}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    withCORS(map[string]string{"Content-Type": "application/json"}),
		Body:       payload,
	}, nil
}

func withCORS(headers map[string]string) map[string]string {
	for k, v := range CORSHeaders {
		headers[k] = v
	}
	return headers
}
