package main

import (
	"net/http"

	"aiscribble/internal/ai"
	"aiscribble/internal/config"
	"aiscribble/internal/events"
	"aiscribble/internal/game"
	"aiscribble/internal/handlers"
	"aiscribble/internal/store"
)

// SetupServer wires the full application: store, event bus, AI client,
// engine and handlers. It returns the router and the engine handle main
// needs for shutdown.
func SetupServer(cfg *config.ServerConfig) (http.Handler, *game.Engine, error) {
	vocab, err := loadVocabulary(cfg)
	if err != nil {
		return nil, nil, err
	}

	gameStore := store.NewMemoryStore(cfg)
	bus := events.NewBus()
	artist := ai.New(cfg.AI)
	engine := game.NewEngine(gameStore, artist, bus, cfg.Game, vocab)
	h := handlers.New(gameStore, engine, bus, cfg)

	return handlers.SetupRouter(h, cfg, nil), engine, nil
}

func loadVocabulary(cfg *config.ServerConfig) (*game.Vocabulary, error) {
	if cfg.Game.WordsFile == "" {
		return game.DefaultVocabulary(), nil
	}
	return game.LoadVocabulary(cfg.Game.WordsFile)
}
