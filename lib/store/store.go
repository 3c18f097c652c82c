/*package store keeps the snapshots loaded during one hpost run.

A Store is an ordered, append-only collection: each loaded file becomes a
snapshot whose Handle is its position in load order. Handles are never
reused and snapshots are never removed, so a Handle stays valid for the
lifetime of the Store.

Decoded files are kept in a small LRU cache keyed by path. A cached decode
is only reused while the file's size and modification time are unchanged,
so a snapshot the solver rewrites in place is decoded again. Loading a
cached path appends a fresh copy of the cached data, so fields derived on
one snapshot never leak into another.

A Store is not safe for concurrent use.
*/
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/horses3d/hpost/lib/discover"
	"github.com/horses3d/hpost/lib/field"
	"github.com/horses3d/hpost/lib/logger"
	"github.com/horses3d/hpost/lib/metrics"
	"github.com/horses3d/hpost/lib/snapio"
)

var (
	// ErrNotFound is returned when a requested path is not among the
	// candidates. It matches discover.ErrNotFound under errors.Is.
	ErrNotFound = fmt.Errorf("snapshot %w", discover.ErrNotFound)
	// ErrInvalidRange is returned for a negative skip or a range that ends
	// before it starts.
	ErrInvalidRange = errors.New("invalid snapshot range")
	// ErrInvalidHandle is returned for a Handle the Store never issued.
	ErrInvalidHandle = errors.New("invalid snapshot handle")
)

// DefaultCacheSize is the number of decoded files kept by default.
const DefaultCacheSize = 8

// Handle identifies a snapshot within a Store.
type Handle int

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(log) }
}

// WithByteOrder sets the byte order files are decoded with. The default is
// the platform's native order, which is what the solver writes.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(s *Store) { s.order = order }
}

// WithCacheSize sets how many decoded files are cached. Zero disables the
// cache.
func WithCacheSize(n int) Option {
	return func(s *Store) { s.cacheSize = n }
}

// Store is an ordered collection of loaded snapshots.
type Store struct {
	log       *zap.Logger
	order     binary.ByteOrder
	runID     uuid.UUID
	cacheSize int
	cache     *lru.Cache[string, cachedFile]
	snaps     []*field.Snapshot
}

// cachedFile is a decoded file along with the file state it was read from.
type cachedFile struct {
	size    int64
	modTime time.Time
	sol     *snapio.Solution
}

func (f cachedFile) matches(info os.FileInfo) bool {
	return f.size == info.Size() && f.modTime.Equal(info.ModTime())
}

// New creates an empty Store.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		log:       zap.NewNop(),
		order:     snapio.SystemByteOrder(),
		runID:     uuid.New(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cacheSize < 0 {
		return nil, fmt.Errorf("The decoded-file cache size must be "+
			"non-negative, but it is %d.", s.cacheSize)
	} else if s.cacheSize > 0 {
		var err error
		s.cache, err = lru.New[string, cachedFile](s.cacheSize)
		if err != nil {
			return nil, err
		}
	}

	s.log = s.log.With(zap.Stringer("run", s.runID))
	return s, nil
}

// RunID identifies this Store in log records.
func (s *Store) RunID() uuid.UUID { return s.runID }

// Len returns the number of loaded snapshots.
func (s *Store) Len() int { return len(s.snaps) }

// Snapshot returns the snapshot behind h.
func (s *Store) Snapshot(h Handle) (*field.Snapshot, error) {
	if h < 0 || int(h) >= len(s.snaps) {
		return nil, fmt.Errorf("%w: %d, the store holds %d snapshots",
			ErrInvalidHandle, h, len(s.snaps))
	}
	return s.snaps[h], nil
}

// Registry returns the field registry of the snapshot behind h.
func (s *Store) Registry(h Handle) (*field.Registry, error) {
	snap, err := s.Snapshot(h)
	if err != nil {
		return nil, err
	}
	return snap.Fields(), nil
}

// LoadOne decodes the file at path and appends it as a new snapshot.
// Nothing is appended if the file cannot be read or decoded.
func (s *Store) LoadOne(path string) (Handle, error) {
	sol, err := s.decode(path)
	if err != nil {
		metrics.DecodeErrors.Inc()
		return -1, err
	}

	snap, err := field.NewSnapshot(path, sol.Data.Clone())
	if err != nil {
		metrics.DecodeErrors.Inc()
		return -1, err
	}
	snap.Iteration = sol.Iteration
	snap.Time = sol.Time
	snap.RefValues = sol.RefValues

	h := Handle(len(s.snaps))
	s.snaps = append(s.snaps, snap)
	return h, nil
}

func (s *Store) decode(path string) (*snapio.Solution, error) {
	// A failed Stat bypasses the cache and lets ReadFile report the error.
	info, statErr := os.Stat(path)
	if s.cache != nil && statErr == nil {
		if f, ok := s.cache.Get(path); ok {
			if f.matches(info) {
				metrics.CacheHits.Inc()
				s.log.Debug("decoded file served from cache",
					zap.String("path", path))
				return f.sol, nil
			}
			s.cache.Remove(path)
			s.log.Debug("file changed since it was cached",
				zap.String("path", path),
				zap.Int64("size", info.Size()),
				zap.Time("modified", info.ModTime()))
		}
	}

	buf, err := snapio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sol, err := snapio.Decode(buf, s.order)
	if err != nil {
		return nil, snapio.WithPath(err, path)
	}

	metrics.FilesDecoded.Inc()
	metrics.BytesDecoded.Add(float64(len(buf)))
	s.log.Debug("decoded solution file",
		zap.String("path", path),
		zap.Uint32("elements", sol.ElementCount),
		zap.Uint32("iteration", sol.Iteration),
		zap.Float64("time", sol.Time),
		zap.Ints("order", sol.Order[:]),
		zap.Int("bytes", len(buf)))

	if s.cache != nil && statErr == nil {
		s.cache.Add(path, cachedFile{info.Size(), info.ModTime(), sol})
	}
	return sol, nil
}

// LoadMany loads paths in order. It stops at the first failure and returns
// the handles of the snapshots appended before it along with the error.
func (s *Store) LoadMany(paths []string) ([]Handle, error) {
	out := make([]Handle, 0, len(paths))
	for _, path := range paths {
		h, err := s.LoadOne(path)
		if err != nil {
			return out, err
		}
		out = append(out, h)
	}
	return out, nil
}

// LoadRange loads every (skip+1)-th path from first to last inclusive. See
// SelectRange.
func (s *Store) LoadRange(
	paths []string, first, last string, skip int,
) ([]Handle, error) {
	sel, err := SelectRange(paths, first, last, skip)
	if err != nil {
		return nil, err
	}
	return s.LoadMany(sel)
}

// SelectRange returns paths[i], paths[i+skip+1], ... up to and including
// paths[j], where paths[i] == first and paths[j] == last. last is only
// included if the stride lands on it.
func SelectRange(paths []string, first, last string, skip int) ([]string, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip is %d, but it cannot be negative",
			ErrInvalidRange, skip)
	}

	i, j := indexOf(paths, first), indexOf(paths, last)
	if i < 0 {
		return nil, fmt.Errorf("%w: the first file, %s, is not among the "+
			"%d candidates", ErrNotFound, first, len(paths))
	} else if j < 0 {
		return nil, fmt.Errorf("%w: the last file, %s, is not among the "+
			"%d candidates", ErrNotFound, last, len(paths))
	} else if j < i {
		return nil, fmt.Errorf("%w: the last file, %s, comes before the "+
			"first file, %s", ErrInvalidRange, last, first)
	}

	out := []string{}
	for k := i; k <= j; k += skip + 1 {
		out = append(out, paths[k])
	}
	return out, nil
}

func indexOf(paths []string, path string) int {
	for i := range paths {
		if paths[i] == path {
			return i
		}
	}
	return -1
}
