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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured services are reachable",
	Long: `Check Ollama and the configured models, every translation backend and
the cache. Exits with an error when any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		failed := 0
		report := func(name string, err error) {
			if err != nil {
				failed++
				fmt.Printf("FAIL  %-24s %v\n", name, err)
				return
			}
			fmt.Printf("ok    %s\n", name)
		}

		models, err := c.generator.Models(ctx)
		report("ollama "+cfg.Ollama.BaseURL, err)
		if err == nil {
			for _, want := range []string{cfg.Ollama.Primary, cfg.Ollama.Secondary} {
				report("model "+want, hasModel(models, want))
			}
		}

		for _, b := range c.translator.Backends() {
			report("translation "+b.Name(), b.IsAvailable(ctx))
		}

		fmt.Printf("ok    detector %s\n", c.detector.Backend())

		if c.redis != nil {
			report("redis "+cfg.Cache.RedisAddr, c.redis.Ping(ctx))
		}
		if c.store != nil {
			_, err := c.store.Stats(ctx)
			report("store "+cfg.Store.Path, err)
		}

		if failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

// hasModel matches Ollama tags, so "llama3" is satisfied by "llama3:latest".
func hasModel(available []string, want string) error {
	for _, m := range available {
		if m == want || strings.TrimSuffix(m, ":latest") == want {
			return nil
		}
	}
	return fmt.Errorf("not pulled (run: ollama pull %s)", want)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
