package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"taskforge-hq/taskforge/pkg/providers"
)

// ContentHash is the hex-encoded SHA-256 hash of message content.
// It is the cache lookup key.
type ContentHash string

// HashContent computes the content hash for a message body.
func HashContent(content string) ContentHash {
	sum := sha256.Sum256([]byte(content))
	return ContentHash(hex.EncodeToString(sum[:]))
}

// String returns the hex representation of the hash.
func (h ContentHash) String() string {
	return string(h)
}

// CachedMessage wraps a message with its cache metadata.
type CachedMessage struct {
	// Message is the original (or cached) message.
	Message providers.Message

	// Hash is the content hash used for cache lookup.
	Hash ContentHash

	// FromCache is true when the message was served from the cache.
	FromCache bool

	// TokenCount is the message's token count when known from a previous
	// API response. Zero means unknown.
	TokenCount int
}

// NewCachedMessage wraps a message with a computed hash and no cache hit.
func NewCachedMessage(msg providers.Message) CachedMessage {
	return CachedMessage{
		Message: msg,
		Hash:    HashContent(msg.Content),
	}
}

// Config controls cache capacity, entry lifetime, and which message roles
// are eligible for caching.
type Config struct {
	// MaxEntries is the maximum number of entries held at once.
	MaxEntries int `yaml:"max_entries"`

	// TTL is the entry lifetime. Entries older than this are treated as
	// absent and removed opportunistically.
	TTL time.Duration `yaml:"ttl"`

	// CacheSystemPrompts enables caching of system messages.
	// System prompts repeat across conversations, so this is on by default.
	CacheSystemPrompts bool `yaml:"cache_system_prompts"`

	// CacheUserMessages enables caching of user messages.
	// User messages are usually unique per request, so this is off by default.
	CacheUserMessages bool `yaml:"cache_user_messages"`

	// CacheAssistantMessages enables caching of assistant messages.
	CacheAssistantMessages bool `yaml:"cache_assistant_messages"`
}

// DefaultConfig returns the recommended cache configuration:
// 1000 entries, one hour TTL, system prompts only.
func DefaultConfig() Config {
	return Config{
		MaxEntries:         1000,
		TTL:                time.Hour,
		CacheSystemPrompts: true,
	}
}

// CacheAll returns a copy of the config with every role eligible.
// Useful for workloads that replay near-identical conversations.
func (c Config) CacheAll() Config {
	c.CacheSystemPrompts = true
	c.CacheUserMessages = true
	c.CacheAssistantMessages = true
	return c
}

// SystemPromptsOnly returns a copy of the config with only system messages
// eligible.
func (c Config) SystemPromptsOnly() Config {
	c.CacheSystemPrompts = true
	c.CacheUserMessages = false
	c.CacheAssistantMessages = false
	return c
}

// entry is a stored message with the metadata needed for TTL checks and
// LRU eviction.
type entry struct {
	message      providers.Message
	tokenCount   int
	createdAt    time.Time
	lastAccessed time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	// Hits is the number of lookups served from the cache.
	Hits uint64

	// Misses is the number of lookups that inserted a new entry.
	Misses uint64

	// EntriesAdded is the total number of entries ever inserted.
	EntriesAdded uint64

	// EntriesEvicted counts both capacity and TTL evictions.
	EntriesEvicted uint64

	// TokensSaved is the estimated number of tokens not re-sent thanks
	// to cache hits with a known token count.
	TokensSaved uint64
}

// HitRate returns hits over total accesses, or 0 when there were none.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// TotalAccesses returns the combined hit and miss count.
func (s Stats) TotalAccesses() uint64 {
	return s.Hits + s.Misses
}

// PromptCache stores messages by content hash so repeated prompts can be
// recognized across conversations. It is safe for concurrent use.
//
// Eviction is LRU once the cache is full; expired entries are additionally
// swept on every insert. Lookups never fail: an ineligible or expired
// message simply comes back with FromCache false.
type PromptCache struct {
	mu      sync.RWMutex
	entries map[ContentHash]*entry
	config  Config
	stats   Stats
}

// New creates a prompt cache with the default configuration and the given
// capacity.
func New(maxEntries int) *PromptCache {
	cfg := DefaultConfig()
	cfg.MaxEntries = maxEntries
	return NewWithConfig(cfg)
}

// NewWithConfig creates a prompt cache with a custom configuration.
func NewWithConfig(config Config) *PromptCache {
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultConfig().MaxEntries
	}
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	return &PromptCache{
		entries: make(map[ContentHash]*entry),
		config:  config,
	}
}

// Config returns the cache configuration.
func (p *PromptCache) Config() Config {
	return p.config
}

func (p *PromptCache) shouldCache(role string) bool {
	switch role {
	case providers.RoleSystem:
		return p.config.CacheSystemPrompts
	case providers.RoleUser:
		return p.config.CacheUserMessages
	case providers.RoleAssistant:
		return p.config.CacheAssistantMessages
	default:
		return false
	}
}

// CacheMessage looks up a message by content hash, inserting it on a miss.
// Messages whose role is not eligible pass through untouched and do not
// affect the counters.
func (p *PromptCache) CacheMessage(msg providers.Message) CachedMessage {
	if !p.shouldCache(msg.Role) {
		return NewCachedMessage(msg)
	}

	hash := HashContent(msg.Content)
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[hash]; ok && now.Sub(e.createdAt) < p.config.TTL {
		e.lastAccessed = now
		p.stats.Hits++
		if e.tokenCount > 0 {
			p.stats.TokensSaved += uint64(e.tokenCount)
		}
		return CachedMessage{
			Message:    e.message,
			Hash:       hash,
			FromCache:  true,
			TokenCount: e.tokenCount,
		}
	}

	// Miss (or expired). Make room, sweep, insert.
	if len(p.entries) >= p.config.MaxEntries {
		p.evictOldestLocked()
	}
	p.evictExpiredLocked(now)

	p.entries[hash] = &entry{
		message:      msg,
		createdAt:    now,
		lastAccessed: now,
	}
	p.stats.Misses++
	p.stats.EntriesAdded++

	return CachedMessage{Message: msg, Hash: hash}
}

// CacheMessages runs CacheMessage over a slice, preserving order.
func (p *PromptCache) CacheMessages(msgs []providers.Message) []CachedMessage {
	out := make([]CachedMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, p.CacheMessage(msg))
	}
	return out
}

// UpdateTokenCount records the token count for a cached message, typically
// from a provider's usage report. Unknown hashes are ignored.
func (p *PromptCache) UpdateTokenCount(hash ContentHash, tokenCount int) {
	if tokenCount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[hash]; ok {
		e.tokenCount = tokenCount
	}
}

// evictOldestLocked removes the single least recently accessed entry.
// Caller must hold the write lock.
func (p *PromptCache) evictOldestLocked() {
	var oldestHash ContentHash
	var oldestTime time.Time
	first := true
	for hash, e := range p.entries {
		if first || e.lastAccessed.Before(oldestTime) {
			oldestHash = hash
			oldestTime = e.lastAccessed
			first = false
		}
	}
	if !first {
		delete(p.entries, oldestHash)
		p.stats.EntriesEvicted++
	}
}

// evictExpiredLocked removes every entry past its TTL.
// Caller must hold the write lock.
func (p *PromptCache) evictExpiredLocked(now time.Time) {
	for hash, e := range p.entries {
		if now.Sub(e.createdAt) >= p.config.TTL {
			delete(p.entries, hash)
			p.stats.EntriesEvicted++
		}
	}
}

// Contains reports whether the hash is cached and not expired.
func (p *PromptCache) Contains(hash ContentHash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[hash]
	return ok && time.Since(e.createdAt) < p.config.TTL
}

// Len returns the number of stored entries, including any not yet swept
// expired ones.
func (p *PromptCache) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// IsEmpty reports whether the cache holds no entries.
func (p *PromptCache) IsEmpty() bool {
	return p.Len() == 0
}

// Clear removes all entries. Counters are preserved.
func (p *PromptCache) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[ContentHash]*entry)
}

// Stats returns a snapshot of the cache counters.
func (p *PromptCache) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}
