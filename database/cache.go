package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"businessboard/backend/domain"
	"businessboard/backend/models"
)

const (
	boardCacheKey = "businessboard:board"
	// boardGenKey is bumped by every successful write. A snapshot is only
	// saved while the generation it was read under is still current.
	boardGenKey = "businessboard:board:gen"
)

var errStaleSnapshot = errors.New("board changed while it was being read")

// CachedStore keeps the board snapshot in Redis. Every successful write on
// the wrapped store evicts it; all other reads pass through.
type CachedStore struct {
	domain.Store
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedStore(base domain.Store, client *redis.Client, ttl time.Duration) *CachedStore {
	if base == nil {
		panic("database.NewCachedStore: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachedStore{Store: base, redis: client, ttl: ttl}
}

// ConnectRedis parses a redis:// URL and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *CachedStore) Board(ctx context.Context) (models.Board, error) {
	if b, ok := c.load(ctx); ok {
		return b, nil
	}
	gen, genOK := c.generation(ctx)
	b, err := c.Store.Board(ctx)
	if err != nil {
		return models.Board{}, err
	}
	if genOK {
		c.save(ctx, gen, b)
	}
	return b, nil
}

func (c *CachedStore) InsertBusiness(ctx context.Context, b models.Business) (models.Business, error) {
	out, err := c.Store.InsertBusiness(ctx, b)
	return out, c.evictOn(ctx, err)
}

func (c *CachedStore) UpdateBusiness(ctx context.Context, id int64, p models.BusinessPatch) (models.Business, error) {
	out, err := c.Store.UpdateBusiness(ctx, id, p)
	return out, c.evictOn(ctx, err)
}

func (c *CachedStore) DeleteBusiness(ctx context.Context, id int64) error {
	return c.evictOn(ctx, c.Store.DeleteBusiness(ctx, id))
}

func (c *CachedStore) InsertState(ctx context.Context, name string) (models.State, error) {
	out, err := c.Store.InsertState(ctx, name)
	return out, c.evictOn(ctx, err)
}

func (c *CachedStore) RenameState(ctx context.Context, id int64, name string) (models.State, error) {
	out, err := c.Store.RenameState(ctx, id, name)
	return out, c.evictOn(ctx, err)
}

func (c *CachedStore) DeleteStateIfUnused(ctx context.Context, id int64) error {
	return c.evictOn(ctx, c.Store.DeleteStateIfUnused(ctx, id))
}

func (c *CachedStore) InsertBusinessType(ctx context.Context, name string) (models.BusinessType, error) {
	out, err := c.Store.InsertBusinessType(ctx, name)
	return out, c.evictOn(ctx, err)
}

func (c *CachedStore) InsertUser(ctx context.Context, u models.User) (models.User, error) {
	out, err := c.Store.InsertUser(ctx, u)
	return out, c.evictOn(ctx, err)
}

func (c *CachedStore) load(ctx context.Context) (models.Board, bool) {
	if c.redis == nil {
		return models.Board{}, false
	}
	data, err := c.redis.Get(ctx, boardCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("board cache read failed")
		}
		return models.Board{}, false
	}
	var b models.Board
	if err := json.Unmarshal(data, &b); err != nil {
		log.WithError(err).Warn("board cache decode failed")
		_ = c.redis.Del(ctx, boardCacheKey).Err()
		return models.Board{}, false
	}
	return b, true
}

// generation returns the current write generation, "" before the first write.
func (c *CachedStore) generation(ctx context.Context) (string, bool) {
	if c.redis == nil {
		return "", false
	}
	gen, err := c.redis.Get(ctx, boardGenKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.WithError(err).Warn("board cache generation read failed")
		return "", false
	}
	return gen, true
}

// save stores b only if no write has bumped the generation since gen was read.
func (c *CachedStore) save(ctx context.Context, gen string, b models.Board) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, boardGenKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, boardCacheKey, data, c.ttl)
			return nil
		})
		return err
	}, boardGenKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		log.Debug("board cache skipped stale snapshot")
	default:
		log.WithError(err).Warn("board cache write failed")
	}
}

// evictOn drops the snapshot when the write succeeded and returns err
// unchanged. The eviction outlives a cancelled request.
func (c *CachedStore) evictOn(ctx context.Context, err error) error {
	if err != nil || c.redis == nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	_, derr := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, boardGenKey)
		pipe.Del(ctx, boardCacheKey)
		return nil
	})
	if derr != nil {
		log.WithError(derr).Warn("board cache evict failed")
	}
	return nil
}
