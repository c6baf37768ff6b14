package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist stores, per subject, the instant (in Unix milliseconds) at or before
// which issued credentials are void.
type Denylist struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDenylist creates a Redis-backed denylist. Entries expire after ttl, which
// should match the credential lifetime: older credentials have expired anyway.
func NewDenylist(client *redis.Client, ttl time.Duration) *Denylist {
	return &Denylist{client: client, prefix: "cms:revoked:", ttl: ttl}
}

// Revoke voids every credential for subjectID issued at or before at.
func (d *Denylist) Revoke(ctx context.Context, subjectID string, at time.Time) error {
	key := d.prefix + subjectID
	if err := d.client.Set(ctx, key, strconv.FormatInt(at.UnixMilli(), 10), d.ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// InvalidatedBefore implements RevocationChecker.
func (d *Denylist) InvalidatedBefore(ctx context.Context, subjectID string) (time.Time, bool, error) {
	val, err := d.client.Get(ctx, d.prefix+subjectID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read revocation: %w", err)
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse revocation %q: %w", val, err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}
