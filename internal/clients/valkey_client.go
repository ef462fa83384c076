package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

const VALKEY_ANALYSIS_PREFIX = "analysis:"

type ValkeyConfig struct {
	Address  string
	Password string
	UseTLS   bool
	TTL      time.Duration
}

type ValkeyClient struct {
	conn *valkeyConn
	cfg  ValkeyConfig
	mu   sync.RWMutex
}

// valkeyConn counts the callers still using a client so a replaced client is
// closed only after its in-flight commands finish.
type valkeyConn struct {
	client valkey.Client
	users  sync.WaitGroup
}

func (c ValkeyConfig) options() valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress: []string{
			c.Address,
		},
		Password:         c.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if c.UseTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}
	return opts
}

func connect(cfg ValkeyConfig) (valkey.Client, error) {
	client, err := valkey.NewClient(cfg.options())
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

// NewValkeyClient connects and pings the server.
func NewValkeyClient(cfg ValkeyConfig) (*ValkeyClient, error) {
	client, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", cfg.Address))
	return &ValkeyClient{conn: &valkeyConn{client: client}, cfg: cfg}, nil
}

// acquire returns the current client and a release func that must be called
// once the caller is done with it.
func (vc *ValkeyClient) acquire() (valkey.Client, func()) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	conn := vc.conn
	conn.users.Add(1)
	return conn.client, conn.users.Done
}

func (vc *ValkeyClient) recreateClient() {
	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := connect(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.swap(client)
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

// swap installs client and closes the previous one in the background once
// its users have released it. Nobody can acquire the old conn after the
// swap, so its WaitGroup only counts down.
func (vc *ValkeyClient) swap(client valkey.Client) {
	vc.mu.Lock()
	old := vc.conn
	vc.conn = &valkeyConn{client: client}
	vc.mu.Unlock()

	go func() {
		old.users.Wait()
		old.client.Close()
	}()
}

func (vc *ValkeyClient) Close() {
	vc.mu.RLock()
	conn := vc.conn
	vc.mu.RUnlock()
	conn.users.Wait()
	conn.client.Close()
}

// GetAnalysis returns a cached analysis. A miss is (nil, false, nil).
func (vc *ValkeyClient) GetAnalysis(ctx context.Context, key string) ([]byte, bool, error) {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Get().Key(VALKEY_ANALYSIS_PREFIX + key).Build()
	}, 2)

	data, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return nil, false, err
	}
	return data, true, nil
}

func (vc *ValkeyClient) StoreAnalysis(ctx context.Context, key string, value []byte) error {
	ttl := ttlSeconds(vc.cfg.TTL)
	build := func(c valkey.Client) valkey.Completed {
		set := c.B().Set().Key(VALKEY_ANALYSIS_PREFIX + key).Value(valkey.BinaryString(value))
		if ttl > 0 {
			return set.ExSeconds(ttl).Build()
		}
		return set.Build()
	}

	if err := vc.DoWithRetry(ctx, build, 2).Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return err
	}
	return nil
}

// DoWithRetry builds a fresh command per attempt since a command may not be
// reused once it has been sent.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c, release := vc.acquire()
		result = c.Do(ctx, build(c))
		release()
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

// ttlSeconds rounds up so a positive TTL never becomes "no expiry".
func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return int64((ttl + time.Second - 1) / time.Second)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
