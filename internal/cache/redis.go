package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RedisConfig carries the connection settings for a Redis cache backend.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration
}

const (
	defaultRedisTimeout = 5 * time.Second
	redisKeyPrefix      = "riverwatch:"
)

// RedisClient speaks just enough RESP to back the Store interface: AUTH and
// SELECT during the handshake, then GET, SET, DEL, INCR, PEXPIRE and PTTL.
// A single connection guarded by a mutex serializes commands; the client
// redials after any transport error.
type RedisClient struct {
	cfg RedisConfig

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// respError is an error reply from the server. The connection stays usable
// after one, unlike a transport failure.
type respError struct{ msg string }

func (e *respError) Error() string { return "redis: " + e.msg }

// NewRedisClient dials the configured server. Connecting eagerly surfaces a
// bad address or password at startup instead of on the first cache miss.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	client := &RedisClient{cfg: cfg}
	if err := client.connect(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// Close tears down the connection.
func (c *RedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// IncrementWithTTL bumps the counter at key, stamping the window as its
// expiry on the first increment. Returns the running count and the time left
// in the window.
func (c *RedisClient) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := c.prefixed(key)

	count, err := c.commandInt(ctx, "INCR", k)
	if err != nil {
		return 0, 0, err
	}
	if count == 1 && window > 0 {
		if _, err := c.commandInt(ctx, "PEXPIRE", k, millis(window)); err != nil {
			return 0, 0, err
		}
	}

	remaining, err := c.commandInt(ctx, "PTTL", k)
	if err != nil || remaining < 0 {
		return count, window, nil
	}
	return count, time.Duration(remaining) * time.Millisecond, nil
}

// Set stores value under key. A zero or negative ttl stores it without an
// expiry, matching how the database-backed store keeps zero-expiry rows.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", c.prefixed(key), string(value)}
	if ttl > 0 {
		args = append(args, "PX", millis(ttl))
	}

	status, err := c.commandStatus(ctx, args...)
	if err != nil {
		return err
	}
	if !strings.EqualFold(status, "OK") {
		return fmt.Errorf("redis: SET returned %q", status)
	}
	return nil
}

// Get fetches the value at key. The second return reports whether the key
// existed.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	reply, err := c.command(ctx, "GET", c.prefixed(key))
	if err != nil {
		return nil, false, err
	}

	switch v := reply.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("redis: unexpected GET reply %T", v)
	}
}

// Delete removes the given keys. Missing keys are not an error.
func (c *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	args := make([]string, 1, len(keys)+1)
	args[0] = "DEL"
	for _, key := range keys {
		args = append(args, c.prefixed(key))
	}
	_, err := c.command(ctx, args...)
	return err
}

func (c *RedisClient) prefixed(key string) string {
	key = collapseColons(key)
	if strings.HasPrefix(key, redisKeyPrefix) {
		return key
	}
	return redisKeyPrefix + strings.TrimPrefix(key, ":")
}

func (c *RedisClient) commandStatus(ctx context.Context, args ...string) (string, error) {
	reply, err := c.command(ctx, args...)
	if err != nil {
		return "", err
	}
	s, ok := reply.(string)
	if !ok {
		return "", fmt.Errorf("redis: expected status reply, got %T", reply)
	}
	return s, nil
}

func (c *RedisClient) commandInt(ctx context.Context, args ...string) (int64, error) {
	reply, err := c.command(ctx, args...)
	if err != nil {
		return 0, err
	}
	switch v := reply.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("redis: expected integer reply, got %T", v)
	}
}

func (c *RedisClient) command(ctx context.Context, args ...string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	if err := c.conn.SetDeadline(commandDeadline(ctx, c.cfg.Timeout)); err != nil {
		c.dropLocked()
		return nil, err
	}
	if err := writeCommand(c.conn, args); err != nil {
		c.dropLocked()
		return nil, err
	}

	reply, err := readReply(c.reader)
	if err != nil {
		// An error reply leaves the stream aligned; anything else means the
		// connection can no longer be trusted.
		var re *respError
		if !errors.As(err, &re) {
			c.dropLocked()
		}
		return nil, err
	}
	return reply, nil
}

func (c *RedisClient) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked(ctx)
}

func (c *RedisClient) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		conn net.Conn
		err  error
	)
	if c.cfg.TLS {
		conn, err = (&tls.Dialer{NetDialer: &net.Dialer{}}).DialContext(dialCtx, "tcp", c.cfg.Address)
	} else {
		conn, err = (&net.Dialer{}).DialContext(dialCtx, "tcp", c.cfg.Address)
	}
	if err != nil {
		return err
	}

	reader := bufio.NewReader(conn)
	if err := conn.SetDeadline(commandDeadline(dialCtx, c.cfg.Timeout)); err != nil {
		conn.Close()
		return err
	}

	if err := c.handshake(conn, reader); err != nil {
		conn.Close()
		return err
	}

	// Handshake deadline is spent; each command sets its own.
	if err := conn.SetDeadline(time.Time{}); err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.reader = reader
	return nil
}

func (c *RedisClient) handshake(conn net.Conn, reader *bufio.Reader) error {
	if c.cfg.Password != "" || c.cfg.Username != "" {
		auth := []string{"AUTH"}
		if c.cfg.Username != "" {
			auth = append(auth, c.cfg.Username)
		}
		auth = append(auth, c.cfg.Password)
		if err := expectOK(conn, reader, auth); err != nil {
			return err
		}
	}

	if c.cfg.DB > 0 {
		if err := expectOK(conn, reader, []string{"SELECT", strconv.Itoa(c.cfg.DB)}); err != nil {
			return err
		}
	}
	return nil
}

func (c *RedisClient) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
}

func expectOK(conn net.Conn, reader *bufio.Reader, args []string) error {
	if err := writeCommand(conn, args); err != nil {
		return err
	}
	reply, err := readReply(reader)
	if err != nil {
		return fmt.Errorf("redis: %s failed: %w", args[0], err)
	}
	if s, ok := reply.(string); !ok || !strings.EqualFold(s, "OK") {
		return fmt.Errorf("redis: %s failed: unexpected reply %v", args[0], reply)
	}
	return nil
}

func commandDeadline(ctx context.Context, fallback time.Duration) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Now().Add(fallback)
}

func writeCommand(conn net.Conn, args []string) error {
	buf := make([]byte, 0, 32+len(args)*16)
	buf = append(buf, '*')
	buf = strconv.AppendInt(buf, int64(len(args)), 10)
	buf = append(buf, '\r', '\n')
	for _, arg := range args {
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(arg)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, arg...)
		buf = append(buf, '\r', '\n')
	}
	_, err := conn.Write(buf)
	return err
}

// readReply decodes one RESP value: status and error lines, integers, bulk
// strings (nil for missing keys) and arrays.
func readReply(r *bufio.Reader) (interface{}, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}

	switch prefix {
	case '+':
		return line, nil
	case '-':
		return nil, &respError{msg: line}
	case ':':
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case '$':
		return readBulk(r, line)
	case '*':
		count, err := strconv.Atoi(line)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, nil
		}
		items := make([]interface{}, count)
		for i := range items {
			if items[i], err = readReply(r); err != nil {
				return nil, err
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("redis: unexpected reply prefix %q", prefix)
	}
}

func readBulk(r *bufio.Reader, header string) (interface{}, error) {
	length, err := strconv.Atoi(header)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, nil
	}

	buf := make([]byte, length+2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	if buf[length] != '\r' || buf[length+1] != '\n' {
		return nil, errors.New("redis: bulk reply missing CRLF")
	}
	return buf[:length], nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// collapseColons squashes runs of ':' so callers joining key fragments never
// produce empty segments.
func collapseColons(key string) string {
	if !strings.Contains(key, "::") {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	var prev byte
	for i := 0; i < len(key); i++ {
		if key[i] == ':' && prev == ':' {
			continue
		}
		b.WriteByte(key[i])
		prev = key[i]
	}
	return b.String()
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
