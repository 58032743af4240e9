package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/unitematch/unitematch-api/internal/models"
)

// Posts synthetic match results to a running API so that the feedback
// path of fusion has something to blend.
func main() {
	apiURL := flag.String("url", "http://localhost:8080/feedback", "feedback endpoint")
	roster := flag.String("names", "Pikachu,Snorlax,Mr Mime,Zeraora,Greninja,Blissey,Lucario,Gengar,Cramorant,Venusaur", "comma-separated entity names")
	matches := flag.Int("matches", 20, "number of matches to post")
	teamSize := flag.Int("team-size", 5, "players per team")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	var pool []string
	for _, n := range strings.Split(*roster, ",") {
		if n = strings.TrimSpace(n); n != "" {
			pool = append(pool, n)
		}
	}
	if len(pool) < *teamSize {
		log.Fatalf("need at least %d names, got %d", *teamSize, len(pool))
	}

	rng := rand.New(rand.NewSource(*seed))
	client := &http.Client{Timeout: 5 * time.Second}
	posted := 0

	for i := 0; i < *matches; i++ {
		rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
		result := "loss"
		if rng.Intn(2) == 0 {
			result = "win"
		}
		req := models.FeedbackRequest{
			Team:      append([]string(nil), pool[:*teamSize]...),
			Result:    result,
			Timestamp: time.Now().Add(-time.Duration(*matches-i) * time.Minute).UTC().Format(time.RFC3339),
		}

		payload, err := json.Marshal(req)
		if err != nil {
			log.Fatalf("Failed to marshal JSON: %v", err)
		}
		resp, err := client.Post(*apiURL, "application/json", bytes.NewReader(payload))
		if err != nil {
			log.Fatalf("Failed to send request: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			log.Fatalf("match %d rejected: %s %s", i, resp.Status, string(body))
		}
		posted++
	}

	fmt.Printf("Posted %d matches to %s\n", posted, *apiURL)
}
