package procname

import (
	"errors"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"time"
)

const (
	// Unknown is returned when the process table lookup fails.
	Unknown = "?"
	// Exited is returned when the process entry exists but carries no name.
	Exited = "exited?"
)

// Resolver maps a pid to a process name.
type Resolver interface {
	Name(pid int32) string
}

// LookupFunc adapts a plain function to Resolver.
type LookupFunc func(pid int32) string

func (f LookupFunc) Name(pid int32) string {
	return f(pid)
}

// System resolves names from the kernel process table.
var System Resolver = LookupFunc(lookup)

// CacheConfig sizes the name cache. A size of 0 disables it.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

func (c CacheConfig) Validate() error {
	if c.Size < 0 {
		return errors.New("name_cache.size must not be negative")
	}
	if c.Size > 0 && c.TTL <= 0 {
		return errors.New("name_cache.ttl must be positive")
	}
	return nil
}

// WithCache wraps next in a Cached resolver unless conf disables caching.
func WithCache(next Resolver, conf CacheConfig) Resolver {
	if conf.Size == 0 {
		return next
	}
	return NewCached(next, conf)
}

// Cached remembers resolved names for a short time. Misses are not cached so
// that a process which has not yet shown up is retried on its next event.
type Cached struct {
	next  Resolver
	names *expirable.LRU[int32, string]
}

func NewCached(next Resolver, conf CacheConfig) *Cached {
	return &Cached{
		next:  next,
		names: expirable.NewLRU[int32, string](conf.Size, nil, conf.TTL),
	}
}

func (c *Cached) Name(pid int32) string {
	if name, ok := c.names.Get(pid); ok {
		return name
	}

	name := c.next.Name(pid)
	if name != Unknown && name != Exited {
		c.names.Add(pid, name)
	}

	return name
}
