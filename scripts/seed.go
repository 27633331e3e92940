package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"stories-client/internal/auth"
	"stories-client/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Emits demo story groups (stories.json) and a dev token for running the
// client against fixtures or a freshly seeded backend.
func main() {
	godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	viewer := models.User{ID: uuid.New(), Username: "demo-viewer"}
	alice := models.User{ID: uuid.New(), Username: "alice"}
	bob := models.User{ID: uuid.New(), Username: "bob"}

	groups := []models.StoryGroup{
		{
			Author: alice,
			Stories: []models.Story{
				demoStory(alice.ID, models.Media{URI: "https://cdn.example.com/a1.jpg", Type: models.MediaImage}),
				demoStory(alice.ID, models.Media{URI: "https://cdn.example.com/a2.mp4", Type: models.MediaVideo, DurationSec: 12}),
			},
		},
		{
			// Intentionally empty: exercises the player's auto-skip path.
			Author: bob,
		},
		{
			Author: viewer,
			Stories: []models.Story{
				demoStory(viewer.ID, models.Media{URI: "https://cdn.example.com/v1.jpg", Type: models.MediaImage}),
			},
		},
	}

	data, err := json.MarshalIndent(map[string]interface{}{"groups": groups}, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode groups: %v", err)
	}
	if err := os.WriteFile("stories.json", data, 0o644); err != nil {
		log.Fatalf("failed to write stories.json: %v", err)
	}

	token, err := auth.GenerateToken(viewer.ID, "demo@example.com", secret)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println("Wrote stories.json")
	fmt.Printf("AUTH_TOKEN=%s\n", token)
}

func demoStory(authorID uuid.UUID, media models.Media) models.Story {
	return models.Story{
		ID:        uuid.New(),
		AuthorID:  authorID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		Canvas:    models.Canvas{Width: 390, Height: 844},
		Media:     media,
		MediaTransform: models.Transform{
			TranslateX: 12,
			TranslateY: -8,
			Scale:      1.15,
			Rotation:   4,
		},
		Texts: []models.TextOverlay{
			{
				ID:        uuid.New(),
				Text:      "hello",
				Transform: models.Transform{TranslateX: -40, TranslateY: 180, Scale: 1.4, Rotation: -10},
				Style: models.TextStyle{
					Color:           "#FFFFFF",
					BackgroundColor: "transparent",
					Shadow:          true,
					FontSize:        32,
					FontWeight:      "bold",
				},
			},
		},
	}
}
