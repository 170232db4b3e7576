package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
)

const (
	defaultPieceLimit = 7
	defaultActionRate = 30.0
	defaultBurst      = 60
)

func setCors(h http.Handler) http.Handler {
	origin := os.Getenv("ORIGIN")
	if origin == "" {
		origin = "http://localhost:8080"
		log.Printf("defaulting to origin %s", origin)
	}

	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func pieceLimit() int {
	raw := os.Getenv("PIECE_LIMIT")
	if raw == "" {
		return defaultPieceLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		log.Printf("ignoring bad PIECE_LIMIT %q, defaulting to %d", raw, defaultPieceLimit)
		return defaultPieceLimit
	}
	return limit
}

func redisClient(ctx context.Context) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Printf("REDIS_ADDR not set, running without durable mirror")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to reach redis at %s: %v", addr, err)
	}
	log.Printf("mirroring pieces to redis at %s", addr)
	return rdb
}

func sessionSecret() []byte {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-session-secret"
		log.Printf("SESSION_SECRET not set, using the development secret")
	}
	return []byte(secret)
}

func main() {
	ctx := context.Background()

	store := NewPieceStore(redisClient(ctx))
	if err := store.Load(ctx); err != nil {
		log.Fatal(err)
	}
	store.Seed(ctx)

	tracker := NewSessionTracker(pieceLimit(), defaultActionRate, defaultBurst, sessionSecret())
	broker := NewBroker(store, tracker)

	router := mux.NewRouter()
	router.Handle("/health", healthController{})
	router.Handle("/ws", NewWebsocket(broker, tracker))
	router.HandleFunc("/pieces", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(broker.Snapshot()); err != nil {
			log.Printf("failed to encode pieces: %v", err)
		}
	}).Methods("GET")

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		log.Printf("defaulting to port %s", port)
	}

	log.Printf("listening on port %s", port)
	if err := http.ListenAndServe(":"+port, setCors(router)); err != nil {
		log.Fatal(err)
	}
}
