package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// The trainer tunes the evaluation weight vector by evolutionary
// self-play: each candidate's weights are installed on the backend, a
// batch of auto-played games is run through the HTTP API, and the
// candidates are ranked by average score. The champion's weights are
// persisted after every generation.

type evalWeights struct {
	Openness     float64 `json:"openness"`
	Smoothness   float64 `json:"smoothness"`
	Monotonicity float64 `json:"monotonicity"`
	Corner       float64 `json:"corner"`
}

type gameStateResponse struct {
	Score       int  `json:"score"`
	Moves       int  `json:"moves"`
	HighestTile int  `json:"highest_tile"`
	Over        bool `json:"over"`
}

type autoMoveResponse struct {
	State gameStateResponse `json:"state"`
	Found bool              `json:"found"`
}

type candidate struct {
	ID       string      `json:"id"`
	Weights  evalWeights `json:"weights"`
	AvgScore float64     `json:"avg_score"`
	BestTile int         `json:"best_tile"`
}

type trainerStatus struct {
	Running     bool        `json:"running"`
	Generation  int         `json:"generation"`
	GamesPlayed int         `json:"games_played"`
	Champion    candidate   `json:"champion"`
	Standings   []candidate `json:"standings,omitempty"`
	UpdatedAt   string      `json:"updated_at"`
}

type trainer struct {
	client        *http.Client
	baseURL       string
	pollInterval  time.Duration
	gamesPerCand  int
	maxMoves      int
	mutationScale float64
	outputDir     string
	rng           *rand.Rand

	statusMu sync.RWMutex
	status   trainerStatus
}

func main() {
	backendURL := flag.String("backend", "http://localhost:8080", "backend base URL")
	games := flag.Int("games", 3, "games per candidate per generation")
	populationSize := flag.Int("population", 6, "candidates per generation")
	generations := flag.Int("generations", 0, "generations to run (0 = until interrupted)")
	mutation := flag.Float64("mutation", 0.15, "relative mutation strength")
	maxMoves := flag.Int("max-moves", 5000, "safety cap on moves per game")
	outputDir := flag.String("out", "trainer-out", "directory for champion weight files")
	apiAddr := flag.String("api", ":8090", "status API listen address")
	profileMode := flag.String("profile", "", "enable profiling: cpu or mem")
	seed := flag.Int64("seed", 0, "rng seed (0 = time-based)")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	t := &trainer{
		client:        &http.Client{Timeout: 5 * time.Minute},
		baseURL:       *backendURL,
		pollInterval:  time.Second,
		gamesPerCand:  *games,
		maxMoves:      *maxMoves,
		mutationScale: *mutation,
		outputDir:     *outputDir,
		rng:           rand.New(rand.NewSource(*seed)),
	}
	t.startStatusAPI(*apiAddr)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if err := t.waitBackendReady(sigCtx); err != nil {
		log.Fatal().Err(err).Msg("backend not reachable")
	}

	if err := t.run(sigCtx, *populationSize, *generations); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("training failed")
	}
	log.Info().Msg("trainer stopping")
}

func (t *trainer) run(ctx context.Context, populationSize, generations int) error {
	champion, err := t.getWeights()
	if err != nil {
		return err
	}
	championCand := candidate{ID: "champion", Weights: champion}
	population := t.initializePopulation(champion, populationSize)

	for generation := 1; generations == 0 || generation <= generations; generation++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Running = true
			s.Generation = generation
			s.GamesPlayed = 0
		})
		for i := range population {
			if err := t.evaluateCandidate(ctx, &population[i]); err != nil {
				return err
			}
			log.Info().
				Int("generation", generation).
				Str("candidate", population[i].ID).
				Float64("avg_score", population[i].AvgScore).
				Int("best_tile", population[i].BestTile).
				Msg("candidate evaluated")
		}
		sortCandidates(population)
		best := population[0]
		if championCand.AvgScore == 0 || best.AvgScore > championCand.AvgScore {
			championCand = candidate{ID: fmt.Sprintf("champion-g%d", generation), Weights: best.Weights, AvgScore: best.AvgScore, BestTile: best.BestTile}
			if err := t.persistChampion(championCand); err != nil {
				log.Error().Err(err).Msg("champion persist failed")
			}
			log.Info().Int("generation", generation).Float64("avg_score", best.AvgScore).Msg("champion promoted")
		} else {
			log.Info().Int("generation", generation).Msg("champion retained")
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Champion = championCand
			s.Standings = topCandidates(population, 8)
		})
		population = t.nextGeneration(championCand.Weights, population, populationSize)
	}
	if err := t.setWeights(championCand.Weights); err != nil {
		return err
	}
	t.updateStatus(func(s *trainerStatus) { s.Running = false })
	return nil
}

// evaluateCandidate installs the candidate's weights on the backend and
// measures its average game score over the configured batch.
func (t *trainer) evaluateCandidate(ctx context.Context, cand *candidate) error {
	if err := t.setWeights(cand.Weights); err != nil {
		return err
	}
	totalScore := 0
	bestTile := 0
	for game := 0; game < t.gamesPerCand; game++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		final, err := t.playGame(ctx)
		if err != nil {
			return err
		}
		totalScore += final.Score
		if final.HighestTile > bestTile {
			bestTile = final.HighestTile
		}
		t.updateStatus(func(s *trainerStatus) { s.GamesPlayed++ })
	}
	cand.AvgScore = float64(totalScore) / float64(t.gamesPerCand)
	cand.BestTile = bestTile
	return nil
}

// playGame runs one full auto-played game via the backend API, one move
// per request, and returns the final state.
func (t *trainer) playGame(ctx context.Context) (gameStateResponse, error) {
	if err := t.postJSON("/api/game/new", map[string]any{}, nil); err != nil {
		return gameStateResponse{}, err
	}
	var last gameStateResponse
	for move := 0; move < t.maxMoves; move++ {
		if ctx.Err() != nil {
			return last, ctx.Err()
		}
		var resp autoMoveResponse
		if err := t.postJSON("/api/ai/auto-move", map[string]any{}, &resp); err != nil {
			return last, err
		}
		last = resp.State
		if !resp.Found || resp.State.Over {
			return last, nil
		}
	}
	log.Warn().Int("max_moves", t.maxMoves).Msg("game hit move cap")
	return last, nil
}

func (t *trainer) initializePopulation(seed evalWeights, size int) []candidate {
	pop := make([]candidate, 0, size)
	pop = append(pop, candidate{ID: "p0", Weights: seed})
	for i := 1; i < size; i++ {
		pop = append(pop, candidate{ID: fmt.Sprintf("p%d", i), Weights: t.mutateWeights(seed)})
	}
	return pop
}

func (t *trainer) nextGeneration(champion evalWeights, ranked []candidate, size int) []candidate {
	next := make([]candidate, 0, size)
	next = append(next, candidate{ID: "p0", Weights: champion})
	parentPool := ranked
	if len(parentPool) > 3 {
		parentPool = parentPool[:3]
	}
	for len(next) < size {
		parent := parentPool[t.rng.Intn(len(parentPool))]
		next = append(next, candidate{
			ID:      fmt.Sprintf("mut-%d", len(next)),
			Weights: t.mutateWeights(parent.Weights),
		})
	}
	return next
}

func (t *trainer) mutateWeights(base evalWeights) evalWeights {
	mutate := func(v float64) float64 {
		factor := 1 + (t.rng.Float64()*2-1)*t.mutationScale
		next := v * factor
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= 0 {
			return v
		}
		return next
	}
	return evalWeights{
		Openness:     mutate(base.Openness),
		Smoothness:   mutate(base.Smoothness),
		Monotonicity: mutate(base.Monotonicity),
		Corner:       mutate(base.Corner),
	}
}

func (t *trainer) persistChampion(champ candidate) error {
	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(champ, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	path := filepath.Join(t.outputDir, "champion_weights.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func sortCandidates(list []candidate) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].AvgScore > list[i].AvgScore {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}

func topCandidates(list []candidate, limit int) []candidate {
	if len(list) < limit {
		limit = len(list)
	}
	return append([]candidate(nil), list[:limit]...)
}

func (t *trainer) startStatusAPI(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trainer/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
	})
	mux.HandleFunc("/api/trainer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("trainer api server error")
		}
	}()
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := t.getJSON("/api/health", &struct{}{}); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, t.pollInterval) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("backend not ready after 60s")
}

func (t *trainer) getWeights() (evalWeights, error) {
	var weights evalWeights
	if err := t.getJSON("/api/ai/weights", &weights); err != nil {
		return evalWeights{}, err
	}
	return weights, nil
}

func (t *trainer) setWeights(w evalWeights) error {
	return t.postJSON("/api/ai/weights", w, nil)
}

func (t *trainer) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, t.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (t *trainer) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
