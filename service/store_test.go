package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
	"github.com/ruslamp94/reglament-svetofor-v78/model"
)

func newTestStore(maxReviews int) *ReviewStore {
	return &ReviewStore{
		reviews:    make(map[string]*model.Review),
		maxReviews: maxReviews,
	}
}

func TestReviewStoreSaveAndGet(t *testing.T) {
	store := newTestStore(100)

	review := &model.Review{
		ID:        "test-id-1",
		Username:  "user1",
		Filename:  "contract.docx",
		CreatedAt: time.Now(),
	}

	store.Save(review)

	retrieved := store.Get("test-id-1")
	if retrieved == nil {
		t.Fatal("Expected to retrieve review")
	}
	if retrieved.Filename != "contract.docx" {
		t.Errorf("Expected filename contract.docx, got %s", retrieved.Filename)
	}
	if retrieved.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set on save")
	}

	if store.Get("non-existent") != nil {
		t.Error("Expected nil for non-existent review")
	}
}

func TestReviewStoreGetByUser(t *testing.T) {
	store := newTestStore(100)

	now := time.Now()
	store.Save(&model.Review{ID: "1", Username: "user1", CreatedAt: now.Add(-2 * time.Hour)})
	store.Save(&model.Review{ID: "2", Username: "user1", CreatedAt: now})
	store.Save(&model.Review{ID: "3", Username: "user2", CreatedAt: now})

	user1Reviews := store.GetByUser("user1")
	if len(user1Reviews) != 2 {
		t.Fatalf("Expected 2 reviews for user1, got %d", len(user1Reviews))
	}
	// Newest first.
	if user1Reviews[0].ID != "2" || user1Reviews[1].ID != "1" {
		t.Errorf("Expected order [2 1], got [%s %s]", user1Reviews[0].ID, user1Reviews[1].ID)
	}

	if len(store.GetByUser("user3")) != 0 {
		t.Error("Expected no reviews for unknown user")
	}
}

func TestReviewStoreDelete(t *testing.T) {
	store := newTestStore(100)

	store.Save(&model.Review{ID: "delete-me", CreatedAt: time.Now()})

	if store.Get("delete-me") == nil {
		t.Fatal("Expected review to exist before delete")
	}

	store.Delete("delete-me")

	if store.Get("delete-me") != nil {
		t.Error("Expected review to be deleted")
	}
}

func TestReviewStoreUpdate(t *testing.T) {
	store := newTestStore(100)

	store.Save(&model.Review{ID: "update-me", CreatedAt: time.Now()})

	decision := analyzer.ZoneDecision{Zone: analyzer.ZoneYellow, Reason: "test"}
	ok := store.Update("update-me", func(r *model.Review) {
		r.Zone = &decision
	})
	if !ok {
		t.Fatal("Expected update to succeed")
	}

	review := store.Get("update-me")
	if review.Zone == nil || review.Zone.Zone != analyzer.ZoneYellow {
		t.Errorf("Expected yellow zone on review, got %v", review.Zone)
	}

	if store.Update("non-existent", func(r *model.Review) {}) {
		t.Error("Expected update of non-existent review to report false")
	}
}

func TestReviewStoreCleanup(t *testing.T) {
	store := newTestStore(2)

	now := time.Now()
	store.Save(&model.Review{ID: "oldest", CreatedAt: now.Add(-3 * time.Hour)})
	store.Save(&model.Review{ID: "middle", CreatedAt: now.Add(-2 * time.Hour)})
	store.Save(&model.Review{ID: "newest", CreatedAt: now})

	if store.Count() != 2 {
		t.Errorf("Expected 2 reviews after cleanup, got %d", store.Count())
	}
	if store.Get("oldest") != nil {
		t.Error("Expected oldest review to be evicted")
	}
	if store.Get("newest") == nil {
		t.Error("Expected newest review to survive")
	}
}

func TestReviewStoreUnlimited(t *testing.T) {
	store := newTestStore(0)

	for i := 0; i < 150; i++ {
		store.Save(&model.Review{ID: fmt.Sprintf("id-%d", i), CreatedAt: time.Now()})
	}

	if store.Count() != 150 {
		t.Errorf("Expected 150 reviews with unlimited capacity, got %d", store.Count())
	}
}
