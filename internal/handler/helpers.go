package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	if raw == "" {
		return 0, fmt.Errorf("%s no proporcionado", key)
	}

	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ID inválido: %s", raw)
	}

	return uint(parsed), nil
}

// optionalQueryUint parses an id-shaped query parameter; absence is nil, a
// malformed value is an error rather than a silent miss.
func optionalQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parámetro %s inválido", key)
	}

	value := uint(parsed)
	return &value, nil
}

func optionalQueryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parámetro %s inválido", key)
	}

	return &parsed, nil
}

// queryUintList parses a comma separated list of ids.
func queryUintList(c *fiber.Ctx, key string) ([]uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parámetro %s inválido", key)
		}
		ids = append(ids, uint(parsed))
	}

	return ids, nil
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
