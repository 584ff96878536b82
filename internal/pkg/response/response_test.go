package response

import (
	"errors"
	"net/http/httptest"
	"testing"

	"delius-api/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return FromError(c, err)
	})
	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, testErr)
	return resp.StatusCode
}

func TestFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", domain.BadRequest("bad"), fiber.StatusBadRequest},
		{"not found", domain.NotFound("missing"), fiber.StatusNotFound},
		{"conflict", domain.Conflict("stale"), fiber.StatusConflict},
		{"unauthorized", domain.Unauthorized("who"), fiber.StatusUnauthorized},
		{"forbidden", domain.Forbidden("no"), fiber.StatusForbidden},
		{"unknown error", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusFor(t, tc.err))
		})
	}
}
