package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
)

// ErrEmptyName rejects an identify call with no usable full name.
var ErrEmptyName = errors.New("full name must not be empty")

// Identify binds a chat handle to the full name the rota uses, so later
// queries can say "my shifts" without retyping the name.
func Identify(ctx context.Context, users cache.UserStore, logger *zap.Logger, handle, fullName string) (string, error) {
	fullName = schedule.NormalizeName(fullName)
	if fullName == "" {
		return "", ErrEmptyName
	}

	if err := users.Bind(handle, fullName); err != nil {
		return "", fmt.Errorf("failed to bind user: %w", err)
	}

	logger.Info("user bound", zap.String("handle", handle), zap.String("name", fullName))
	return fullName, nil
}

// ResolveHandle returns the rota name bound to a handle, falling back to
// the handle itself when no binding exists.
func ResolveHandle(users cache.UserStore, handle string) string {
	if name, ok := users.Lookup(handle); ok {
		return name
	}
	return strings.TrimSpace(handle)
}
