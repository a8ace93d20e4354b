package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salescore-backend/internal/adapters/http/handlers"
	"salescore-backend/internal/config"
	"salescore-backend/internal/pkg/password"
	"salescore-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func registerRequest(t *testing.T, body string) *response.Response {
	t.Helper()

	app := fiber.New()
	handler := handlers.NewAuthHandler(nil, &config.Config{})
	app.Post("/auth/register", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return &payload
}

func TestRegisterRejectsShortPasswordWithMinLengthMessage(t *testing.T) {
	payload := registerRequest(t,
		`{"username":"mario","email":"mario@salescore.io","password":"short","roles_ids":[2]}`)

	require.Equal(t,
		fmt.Sprintf("Password must be at least %d characters", password.MinLength),
		payload.Error)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	require.Equal(t, "Username is required", registerRequest(t,
		`{"email":"mario@salescore.io","password":"Password1!","roles_ids":[2]}`).Error)
	require.Equal(t, "Email is required", registerRequest(t,
		`{"username":"mario","password":"Password1!","roles_ids":[2]}`).Error)
	require.Equal(t, "At least one role is required", registerRequest(t,
		`{"username":"mario","email":"mario@salescore.io","password":"Password1!"}`).Error)
}
