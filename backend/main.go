package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	_ "go.uber.org/automaxprocs"
)

type moveRequest struct {
	Direction string `json:"direction"`
}

type newGameRequest struct {
	Size int `json:"size"`
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

type autoPlayRequest struct {
	Enabled bool `json:"enabled"`
}

type hintResponse struct {
	Move  string `json:"move"`
	Found bool   `json:"found"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	config, err := LoadConfigFile(*configPath)
	if err != nil {
		setupLogging("info")
		log.Fatal().Err(err).Msg("config load failed")
	}
	configStore.Update(config)
	setupLogging(config.LogLevel)

	controller, err := NewGameController(config)
	if err != nil {
		log.Fatal().Err(err).Msg("controller init failed")
	}

	leaderboard := NewLeaderboard(config.LeaderboardPath)
	if err := leaderboard.Load(); err != nil {
		log.Warn().Err(err).Msg("leaderboard load failed, starting empty")
	}

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())

	recordIfFinished := func(state GameState, auto bool) {
		if !state.Over {
			return
		}
		entry := LeaderboardEntry{
			Score:       state.Score,
			HighestTile: state.HighestTile,
			Moves:       state.Moves,
			BoardSize:   state.Size,
			Difficulty:  controller.Difficulty(),
			Auto:        auto,
			PlayedAt:    time.Now(),
		}
		if err := leaderboard.Record(entry); err != nil {
			log.Error().Err(err).Msg("leaderboard record failed")
		}
	}

	aiPlayer := NewAIPlayer(controller, func(state GameState, outcome MoveOutcome, move Direction) {
		hub.broadcastMove <- movePayload{State: state, Outcome: outcome, Move: move.String(), Auto: true}
		if GetConfig().LogSearchStats {
			logSearchStats("auto", controller.EngineStats())
		}
		recordIfFinished(state, true)
	})
	go aiPlayer.Run(ctx.Done())

	// Periodic diagnostics push for tuning UIs; skipped with no listeners.
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if hub.HasClients() {
					hub.broadcastStats <- controller.EngineStats()
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/game/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.State())
	})

	r.Post("/api/game/new", func(w http.ResponseWriter, r *http.Request) {
		var payload newGameRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
				return
			}
		}
		aiPlayer.Disable()
		aiPlayer.InvalidatePending()
		state, err := controller.NewGame(payload.Size)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		hub.broadcastReset <- state
		writeJSON(w, http.StatusOK, state)
	})

	r.Post("/api/game/move", func(w http.ResponseWriter, r *http.Request) {
		var payload moveRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		direction, err := ParseDirection(payload.Direction)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		state, outcome, err := controller.ApplyMove(direction)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if outcome.Moved {
			aiPlayer.InvalidatePending()
			hub.broadcastMove <- movePayload{State: state, Outcome: outcome, Move: direction.String()}
			recordIfFinished(state, false)
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": state, "outcome": outcome})
	})

	r.Post("/api/game/undo", func(w http.ResponseWriter, r *http.Request) {
		aiPlayer.InvalidatePending()
		state, ok := controller.Undo()
		if !ok {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "nothing to undo"})
			return
		}
		hub.broadcastState <- state
		writeJSON(w, http.StatusOK, state)
	})

	r.Post("/api/game/keep-playing", func(w http.ResponseWriter, r *http.Request) {
		state := controller.KeepPlaying()
		hub.broadcastState <- state
		writeJSON(w, http.StatusOK, state)
	})

	r.Get("/api/ai/hint", func(w http.ResponseWriter, r *http.Request) {
		move, found, err := controller.Hint()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		resp := hintResponse{Found: found}
		if found {
			resp.Move = move.String()
		}
		if GetConfig().LogSearchStats {
			logSearchStats("hint", controller.EngineStats())
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/api/ai/auto-move", func(w http.ResponseWriter, r *http.Request) {
		state, outcome, move, found, err := controller.AutoMove()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if found {
			aiPlayer.InvalidatePending()
			hub.broadcastMove <- movePayload{State: state, Outcome: outcome, Move: move.String(), Auto: true}
			recordIfFinished(state, true)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"state":   state,
			"outcome": outcome,
			"move":    move.String(),
			"found":   found,
		})
	})

	r.Post("/api/ai/auto-play", func(w http.ResponseWriter, r *http.Request) {
		var payload autoPlayRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Enabled {
			aiPlayer.Enable()
		} else {
			aiPlayer.Disable()
		}
		hub.broadcastConfig <- configPayload{
			Difficulty: controller.Difficulty(),
			Weights:    controller.Weights(),
			AutoPlay:   aiPlayer.Enabled(),
		}
		writeJSON(w, http.StatusOK, map[string]bool{"enabled": aiPlayer.Enabled()})
	})

	r.Get("/api/ai/difficulty", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]Difficulty{"difficulty": controller.Difficulty()})
	})

	r.Post("/api/ai/difficulty", func(w http.ResponseWriter, r *http.Request) {
		var payload difficultyRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		difficulty, err := ParseDifficulty(payload.Difficulty)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		controller.SetDifficulty(difficulty)
		hub.broadcastConfig <- configPayload{
			Difficulty: difficulty,
			Weights:    controller.Weights(),
			AutoPlay:   aiPlayer.Enabled(),
		}
		writeJSON(w, http.StatusOK, map[string]Difficulty{"difficulty": difficulty})
	})

	r.Get("/api/ai/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.EngineStats())
	})

	r.Get("/api/ai/weights", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.Weights())
	})

	r.Post("/api/ai/weights", func(w http.ResponseWriter, r *http.Request) {
		var payload EvalWeights
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		payload = resolvedWeights(payload)
		controller.SetWeights(payload)
		hub.broadcastConfig <- configPayload{
			Difficulty: controller.Difficulty(),
			Weights:    payload,
			AutoPlay:   aiPlayer.Enabled(),
		}
		writeJSON(w, http.StatusOK, payload)
	})

	r.Get("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.EngineStats().Cache)
	})

	r.Delete("/api/cache", func(w http.ResponseWriter, r *http.Request) {
		controller.ClearCache()
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	})

	r.Get("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, leaderboard.Entries())
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})

	server := &http.Server{
		Addr:    config.ListenAddr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", config.ListenAddr).Int("board_size", config.BoardSize).Msg("backend listening")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	cancel()
	aiPlayer.Disable()
	if runErr != nil {
		log.Error().Err(runErr).Msg("exiting after server error")
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(controller.State())})

	go func() {
		defer conn.Close()
		_ = client.writePump(conn, wsIdlePingInterval)
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_state":
			client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(controller.State())})
		case "request_stats":
			client.sendJSON(wsMessage{Type: "stats", Payload: mustMarshal(controller.EngineStats())})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
