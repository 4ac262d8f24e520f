package classifier

import (
	"strconv"
	"time"

	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/utils/hashutil"
	gocache "github.com/patrickmn/go-cache"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache memoizes model results in process memory. Entries expire after the
// TTL and are gone on restart.
type Cache struct {
	store *gocache.Cache
}

func NewCache(ttl time.Duration) *Cache {
	cleanup := ttl * 2
	if ttl <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Cache{store: gocache.New(ttl, cleanup)}
}

func (c *Cache) Get(key string) (inference.Result, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}

	var res inference.Result
	if err := msgpack.Unmarshal(val.([]byte), &res); err != nil {
		c.store.Delete(key)
		return nil, false
	}

	return res, true
}

func (c *Cache) Set(key string, res inference.Result) error {
	data, err := msgpack.Marshal(res)
	if err != nil {
		return err
	}

	c.store.SetDefault(key, data)
	return nil
}

func (c *Cache) Len() int {
	return c.store.ItemCount()
}

func (c *Cache) Flush() {
	c.store.Flush()
}

// cacheKey identifies one model call. Labels are order sensitive because the
// model sees them in order.
func cacheKey(model string, multiLabel bool, labels []string, text string) string {
	parts := make([]string, 0, len(labels)+3)
	parts = append(parts, model, strconv.FormatBool(multiLabel), text)
	return hashutil.Key(append(parts, labels...)...)
}
