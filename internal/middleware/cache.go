package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/cinemahub/booking-api/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    // size tracks the full body even when the capture buffer is full, so
    // the cache layer can tell a complete capture from a truncated one.
    if cw.limit <= 0 || cw.size < cw.limit {
        if remain := cw.limit - cw.size; cw.limit <= 0 || int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else if remain > 0 {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// generationKey holds the current cache generation. Write handlers bump it
// via BumpGeneration, which orphans every previously written entry; the
// orphans simply age out by TTL.
func generationKey(cfg config.CacheConfig) string {
    return cfg.Prefix + ":gen"
}

// cacheKey builds the entry key from the current generation plus a digest
// of the route and query string.
func cacheKey(cfg config.CacheConfig, gen string, c echo.Context) string {
    sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
    return fmt.Sprintf("%s:g%s:%x", cfg.Prefix, gen, sum[:])
}

// encodeEntry packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodeEntry(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewResponseCache caches successful GET responses in Redis, storing both
// headers and body so clients see output identical to the original render.
// With caching disabled or no Redis client, it is a pass-through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    maxBody := int64(cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }

            ctx := c.Request().Context()
            gen, err := rdb.Get(ctx, generationKey(cfg)).Result()
            if err != nil {
                gen = "0"
            }
            key := cacheKey(cfg, gen, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodeEntry(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Responses larger than the cap are served but never cached; a
            // truncated entry must not be replayed to later clients.
            if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    hdr[k] = append([]string(nil), vals...)
                }
                if entry, err := encodeEntry(cw.status, hdr, cw.buf.Bytes()); err == nil {
                    _ = rdb.SetEx(context.Background(), key, entry, ttl).Err()
                }
            }
            return nil
        }
    }
}

// BumpGeneration invalidates all cached read responses at once. Movie and
// screening write handlers call it after a successful mutation. Errors are
// swallowed: a stale read for one TTL window is preferable to failing the
// write.
func BumpGeneration(ctx context.Context, cfg config.CacheConfig, rdb *redis.Client) {
    if rdb == nil || !cfg.Enabled {
        return
    }
    _ = rdb.Incr(ctx, generationKey(cfg)).Err()
}
