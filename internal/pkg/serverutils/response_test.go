package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Query string `json:"query" validate:"required,max=10"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Query: "ok"}))

	err := ValidateRequest(sampleRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{{Field: "Query", Rule: "required"}}, verr.Fields)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "plan not found") })
	app.Get("/invalid", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{Query: "much too long"}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.JSON(SuccessResponse("fine", 1)) })

	tests := []struct {
		path     string
		wantCode int
		wantMsg  string
	}{
		{path: "/missing", wantCode: 404, wantMsg: "plan not found"},
		{path: "/invalid", wantCode: 400, wantMsg: "validation failed: Query failed max"},
		{path: "/boom", wantCode: 500, wantMsg: "boom"},
		{path: "/ok", wantCode: 200, wantMsg: "fine"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var res Response
			require.NoError(t, json.Unmarshal(body, &res))
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.Equal(t, tt.wantCode == 200, res.Success)
		})
	}
}
