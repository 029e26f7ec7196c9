package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ruslamp94/reglament-svetofor-v78/config"
	"github.com/ruslamp94/reglament-svetofor-v78/model"
)

// ReviewStore is an in-memory store for review history. Persistence is the
// caller's concern by design; this keeps the most recent records only.
type ReviewStore struct {
	reviews    map[string]*model.Review
	mu         sync.RWMutex
	maxReviews int // Maximum reviews to keep, 0 = unlimited
}

// NewReviewStore creates a store with the configured capacity.
func NewReviewStore(cfg *config.StoreConfig) *ReviewStore {
	maxReviews := cfg.MaxReviews
	if maxReviews < 0 {
		maxReviews = 0
	}
	slog.Info("review store initialized", "max_reviews", maxReviews)
	return &ReviewStore{
		reviews:    make(map[string]*model.Review),
		maxReviews: maxReviews,
	}
}

func (s *ReviewStore) Save(review *model.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review.UpdatedAt = time.Now()
	s.reviews[review.ID] = review

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

func (s *ReviewStore) Get(id string) *model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reviews[id]
}

func (s *ReviewStore) GetByUser(username string) []*model.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Review
	for _, r := range s.reviews {
		if r.Username == username {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *ReviewStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
}

// Update applies fn to the review under the write lock. Used by the
// analysis handlers to replace result fields wholesale.
func (s *ReviewStore) Update(id string, fn func(*model.Review)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return false
	}
	fn(r)
	r.UpdatedAt = time.Now()
	return true
}

// cleanupIfNeeded removes oldest reviews if store exceeds maxReviews
// Must be called with lock held
func (s *ReviewStore) cleanupIfNeeded() {
	if s.maxReviews <= 0 {
		return // Unlimited
	}

	if len(s.reviews) <= s.maxReviews {
		return
	}

	// Sort reviews by creation time
	reviews := make([]*model.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		reviews = append(reviews, r)
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
	})

	// Remove oldest reviews
	removeCount := len(reviews) - s.maxReviews
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old review",
			"review_id", reviews[i].ID,
			"created_at", reviews[i].CreatedAt,
		)
		delete(s.reviews, reviews[i].ID)
	}
}

// Count returns the number of reviews in the store
func (s *ReviewStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}
