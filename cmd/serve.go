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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/extractor"
	"github.com/valpere/legalease/internal/server"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Serve the chat page and the session API.

Routes:
  GET  /                               chat page
  POST /api/session                    create a session
  POST /api/session/:id/document       upload a PDF (multipart field "file")
  POST /api/session/:id/ask            {"question": "..."}
  POST /api/session/:id/reset          clear the conversation, keep the document
  GET  /api/session/:id/conversation   conversation log
  GET  /metrics                        Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		srvCfg := cfg.Server
		if serveAddress != "" {
			srvCfg.Address = serveAddress
		}

		logger.Info("starting server",
			zap.String("address", srvCfg.Address),
			zap.String("primary_model", cfg.Ollama.Primary),
			zap.String("secondary_model", cfg.Ollama.Secondary),
			zap.Strings("translation_backends", cfg.Translation.Backends))

		srv := server.New(srvCfg, assistant.NewManager(c.pipeline), extractor.ExtractFile, logger)
		return srv.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "Listen address (overrides server.address)")
}
