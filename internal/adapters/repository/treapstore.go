package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adnan911/Perfect-Square/internal/domain/analyzer"
	"github.com/adnan911/Perfect-Square/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then playerID ASC (deterministic). The BST "less"
// means ranks earlier, so in-order traversal yields the leaderboard from
// best to worst. Scores are integers in [0,100]; ties are common, which the
// rank assignment handles explicitly.

// record stores a player's best result plus its persistence identity.
type record struct {
	score      int
	metrics    analyzer.Metrics
	recordID   string
	recordedAt time.Time
}

// treap node, size-augmented.
type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority keeps higher scores near the treap root so TopN touches
// few nodes. The offset maps possibly-negative ints into uint64 order.
func scoreToPriority(score int) uint64 {
	const offset = uint64(1) << 63
	return uint64(int64(score)) + offset
}

func insert(n *node, id string, score int) *node {
	if n == nil {
		return &node{id: id, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, records, out)
	if len(*out) < limit {
		if rec, exists := records[n.id]; exists {
			*out = append(*out, entryFor(n.id, rec))
		}
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

// collectAll appends every entry in rank order.
func collectAll(n *node, records map[string]record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, records, out)
	if rec, ok := records[n.id]; ok {
		*out = append(*out, entryFor(n.id, rec))
	}
	collectAll(n.right, records, out)
}

func entryFor(id string, rec record) Entry {
	return Entry{
		PlayerID:   id,
		Score:      rec.score,
		Metrics:    rec.metrics,
		RecordID:   rec.recordID,
		RecordedAt: rec.recordedAt,
	}
}

// TreapStore is the in-memory leaderboard.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]record

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options. The
// store runs a background metrics updater until Close or ctx cancellation.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		metricsUpdateInterval: 5 * time.Second,
		byID:                  make(map[string]record),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// UpdateBest implements Store.UpdateBest with O(log n) expected time.
func (s *TreapStore) UpdateBest(ctx context.Context, playerID string, score int) (bool, error) {
	return s.UpdateBestWithMetrics(ctx, playerID, score, analyzer.Metrics{})
}

// UpdateBestWithMetrics implements Store.UpdateBestWithMetrics. An improved
// record gets a fresh UUID identifier and timestamp.
func (s *TreapStore) UpdateBestWithMetrics(ctx context.Context, playerID string, score int, m analyzer.Metrics) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	isNewPlayer := false

	s.mu.Lock()
	if old, ok := s.byID[playerID]; ok {
		if score <= old.score {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, playerID, old.score)
	} else {
		isNewPlayer = true
	}
	s.byID[playerID] = record{
		score:      score,
		metrics:    m,
		recordID:   uuid.NewString(),
		recordedAt: time.Now().UTC(),
	}
	s.root = insert(s.root, playerID, score)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate()
	if isNewPlayer {
		metrics.UpdateTotalPlayers(s.Count(ctx))
	}
	return true, nil
}

// Rank returns the current rank and best score for a player.
func (s *TreapStore) Rank(ctx context.Context, playerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byID[playerID]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	all := make([]Entry, 0, len(s.byID))
	collectAll(s.root, s.byID, &all)
	sortEntries(all)
	assignRanksWithTies(all)

	for _, entry := range all {
		if entry.PlayerID == playerID {
			return entry, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN returns the top N entries ordered by score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byID, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of players.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				n := len(s.byID)
				s.mu.RUnlock()
				metrics.UpdateRepositoryRecordsTotal(n)
				metrics.UpdateTotalPlayers(n)
			}
		}
	}()
}

// sortEntries orders by score desc, playerID asc, matching the treap order.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}

// assignRanksWithTies gives equal scores equal rank; the next distinct score
// takes the next consecutive rank.
func assignRanksWithTies(entries []Entry) {
	currentRank := 1
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].Score == entries[i].Score {
			entries[j].Rank = currentRank
			j++
		}
		currentRank++
		i = j
	}
}
