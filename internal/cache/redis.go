package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/notification-center/internal/model"
)

// scanBatch is the COUNT hint passed to SCAN during invalidation.
const scanBatch = 100

// RedisOptions configures a Redis-backed cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key, e.g. "notification-center:".
	Prefix string

	// TTL bounds entry lifetime; zero keeps entries until invalidated.
	TTL time.Duration
}

// Redis stores feeds as JSON under <prefix>feed:<member>:<limit>, so that
// several client processes can share one cache. The member segment is
// query-escaped, so it never contains ':' or a glob metacharacter.
type Redis struct {
	cli    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection with PING.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}

	return &Redis{cli: cli, prefix: opts.Prefix, ttl: opts.TTL}, nil
}

func (r *Redis) key(memberID string, limit int) string {
	return r.prefix + "feed:" + url.QueryEscape(memberID) + ":" + strconv.Itoa(limit)
}

// globEscaper quotes the characters SCAN MATCH treats specially.
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Get loads and decodes the cached feed. A missing key is a miss, not an
// error.
func (r *Redis) Get(ctx context.Context, memberID string, limit int) ([]model.Notification, bool, error) {
	raw, err := r.cli.Get(ctx, r.key(memberID, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached feed of %s: %w", memberID, err)
	}

	feed := []model.Notification{}
	if err := json.Unmarshal(raw, &feed); err != nil {
		return nil, false, fmt.Errorf("decoding cached feed of %s: %w", memberID, err)
	}
	return feed, true, nil
}

// Set encodes feed as JSON and stores it.
func (r *Redis) Set(ctx context.Context, memberID string, limit int, feed []model.Notification) error {
	if feed == nil {
		feed = []model.Notification{}
	}
	raw, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("encoding feed of %s: %w", memberID, err)
	}
	if err := r.cli.Set(ctx, r.key(memberID, limit), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing cached feed of %s: %w", memberID, err)
	}
	return nil
}

// InvalidateMember deletes every feed cached for memberID.
func (r *Redis) InvalidateMember(ctx context.Context, memberID string) error {
	return r.deleteMatching(ctx, globEscaper.Replace(r.prefix+"feed:"+url.QueryEscape(memberID)+":")+"*")
}

// Clear deletes every feed under the prefix.
func (r *Redis) Clear(ctx context.Context) error {
	return r.deleteMatching(ctx, globEscaper.Replace(r.prefix+"feed:")+"*")
}

func (r *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := r.cli.Scan(ctx, 0, pattern, scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.cli.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting %d cached feeds: %w", len(keys), err)
	}
	return nil
}

// Close closes the Redis connection pool.
func (r *Redis) Close() error {
	return r.cli.Close()
}
