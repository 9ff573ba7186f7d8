package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/streamhive/streamhive/config"
	"github.com/streamhive/streamhive/pkg/helpers"
)

// Seeds a demo channel with a couple of videos, a subscriber and some
// watch history for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hasher := helpers.NewBcryptHasher()
	hash, err := hasher.Hash("password123")
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var aliceID, bobID string
	if err := db.QueryRow(`
		INSERT INTO users (username, email, full_name, avatar_url, password_hash)
		VALUES ('alice', 'alice@example.com', 'Alice Doe', 'https://example.com/alice.png', $1)
		ON CONFLICT (lower(username)) DO UPDATE SET full_name = EXCLUDED.full_name
		RETURNING id
	`, hash).Scan(&aliceID); err != nil {
		log.Fatalf("failed to seed alice: %v", err)
	}
	if err := db.QueryRow(`
		INSERT INTO users (username, email, full_name, avatar_url, password_hash)
		VALUES ('bob', 'bob@example.com', 'Bob Roe', 'https://example.com/bob.png', $1)
		ON CONFLICT (lower(username)) DO UPDATE SET full_name = EXCLUDED.full_name
		RETURNING id
	`, hash).Scan(&bobID); err != nil {
		log.Fatalf("failed to seed bob: %v", err)
	}
	fmt.Printf("seeded users: alice=%s bob=%s (password: password123)\n", aliceID, bobID)

	var videoID string
	if err := db.QueryRow(`
		INSERT INTO videos (owner_id, title, description, video_url, thumbnail_url, duration)
		VALUES ($1, 'Hello StreamHive', 'First upload', 'https://example.com/v/hello.mp4', 'https://example.com/v/hello.jpg', 42.5)
		RETURNING id
	`, aliceID).Scan(&videoID); err != nil {
		log.Fatalf("failed to seed video: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)
	`, bobID, aliceID); err != nil {
		log.Fatalf("failed to seed subscription: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)
	`, bobID, videoID); err != nil {
		log.Fatalf("failed to seed watch history: %v", err)
	}

	fmt.Printf("seeded video %s, bob subscribes to alice and watched the video\n", videoID)
}
