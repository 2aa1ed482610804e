/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/cache"
	"github.com/valpere/legalease/internal/config"
	"github.com/valpere/legalease/internal/detector"
	"github.com/valpere/legalease/internal/generator"
	"github.com/valpere/legalease/internal/orchestrator"
	"github.com/valpere/legalease/internal/store"
	"github.com/valpere/legalease/internal/translator"
	"github.com/valpere/legalease/internal/validator"
	"github.com/valpere/legalease/internal/verdict"
)

// components holds everything built from the configuration. Close releases
// the database and the redis connection.
type components struct {
	detector   *detector.Detector
	store      *store.Store
	redis      *cache.RedisCache
	translator *translator.Translator
	generator  *generator.OllamaClient
	pipeline   *assistant.Pipeline
}

func (c *components) Close() {
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.store != nil {
		_ = c.store.Close()
	}
}

// openStore opens the SQLite store, or returns nil when it is disabled.
func openStore(cfg *config.Config) (*store.Store, error) {
	if !cfg.Store.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func buildComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	det, err := detector.New(cfg.Detector.Backend)
	if err != nil {
		return nil, err
	}
	c := &components{detector: det}

	c.store, err = openStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := []translator.Option{
		translator.WithTimeout(cfg.Translation.Timeout),
		translator.WithChunkSize(cfg.Translation.ChunkSize),
		translator.WithLogger(logger),
	}
	switch cfg.Cache.Backend {
	case "sqlite":
		opts = append(opts, translator.WithCache(c.store))
	case "redis":
		c.redis = cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		opts = append(opts, translator.WithCache(c.redis))
	}

	backends, err := buildBackends(cfg, c.store, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.translator = translator.New(backends, opts...)

	c.generator = generator.NewOllamaClient(cfg.Ollama.BaseURL, generator.RequestTimeout(cfg.Ollama.Timeout), logger)
	orch := orchestrator.New(c.generator, []orchestrator.Model{
		{Name: cfg.Ollama.Primary, Label: verdict.PrimaryLabel},
		{Name: cfg.Ollama.Secondary, Label: verdict.SecondaryLabel},
	}, orchestrator.Config{Timeout: cfg.Ollama.Timeout, Sequential: cfg.Ollama.Sequential})

	pipeOpts := []assistant.PipelineOption{
		assistant.WithSampleSize(cfg.Detector.SampleSize),
		assistant.WithLogger(logger),
	}
	if c.store != nil {
		pipeOpts = append(pipeOpts, assistant.WithQueryLog(c.store))
	}
	c.pipeline, err = assistant.NewPipeline(det, c.translator, orch, validator.New(det, c.translator), pipeOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// buildBackends constructs the translation backends in configured order.
// The Ollama backend reads glossary terms from db when it is open.
func buildBackends(cfg *config.Config, db *store.Store, logger *zap.Logger) ([]translator.Backend, error) {
	var glossary translator.Glossary
	if db != nil {
		glossary = db
	}

	var list []translator.Backend
	for _, name := range cfg.Translation.Backends {
		switch name {
		case "google":
			list = append(list, translator.NewGoogleBackend(cfg.Translation.Credentials, cfg.Translation.ProjectID))
		case "mymemory":
			list = append(list, translator.NewMyMemoryBackend("", cfg.Translation.MyMemoryEmail, cfg.Translation.Timeout))
		case "ollama":
			list = append(list, translator.NewOllamaBackend(cfg.Ollama.BaseURL, cfg.Translation.OllamaModel, cfg.Translation.Timeout, glossary, logger))
		default:
			logger.Warn("unknown translation backend, skipping", zap.String("backend", name))
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid translation backends configured")
	}
	return list, nil
}
