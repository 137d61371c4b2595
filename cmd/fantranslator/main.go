/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command fantranslator manages manga translation projects from the shell
// and launches the desktop editor.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fantranslator/internal/config"
	"fantranslator/internal/crash"
	applog "fantranslator/internal/log"
	"fantranslator/internal/session"
)

// appCfg is loaded once per invocation before any command runs.
var appCfg = config.Defaults()

var rootCmd = &cobra.Command{
	Use:   "fantranslator",
	Short: "Translate manga pages with synchronized text regions",
	Long: `fantranslator keeps translated text regions on comic pages in sync with
their translations. It also manages the pages of a translation project.

Page commands take a .ftdoc page artifact. Project commands take the
project directory holding project.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appCfg = cfg
		applog.Init(cfg.Logging.Options())
		applog.WithComponent("cli").Debug("start", slog.String("cmd", cmd.CommandPath()))
		return nil
	},
}

// newSession creates a session from the loaded config. Callers close it.
func newSession() *session.Session {
	return session.New(appCfg, nil)
}

func run() int {
	defer crash.Recover("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	// Missing .env is fine; FT_* variables may come from the environment.
	_ = godotenv.Load()
	os.Exit(run())
}
