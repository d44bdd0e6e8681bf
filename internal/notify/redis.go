// Package notify publishes account events over Redis pub/sub so that
// connected frontends can react without polling.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/redis/go-redis/v9"
)

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RoleNotifier announces role changes on a per-user channel. Delivery is
// fire-and-forget; a broken Redis never fails the role update itself.
type RoleNotifier struct {
	client *redis.Client
	logger *log.Logger
}

func NewRoleNotifier(client *redis.Client, logger *log.Logger) *RoleNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &RoleNotifier{client: client, logger: logger}
}

// RoleChanged publishes the new role to channel role-update:<userID>.
func (n *RoleNotifier) RoleChanged(ctx context.Context, userID int64, role string) {
	channel := fmt.Sprintf("role-update:%d", userID)
	if err := n.client.Publish(ctx, channel, role).Err(); err != nil {
		n.logger.Printf("notify: publish %s failed: %v", channel, err)
	}
}
