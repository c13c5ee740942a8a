package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOrderRequestsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_requests.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order_requests migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS order_requests",
		"items JSONB NOT NULL",
		"CHECK (status IN ('pending', 'accepted', 'rejected', 'completed'))",
		"FOREIGN KEY (seller_id) REFERENCES users(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS order_requests",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReviewsMigrationGatesRating(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_reviews.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no reviews migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{"CHECK (rating BETWEEN 1 AND 5)", "order_id UUID NOT NULL UNIQUE"} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
