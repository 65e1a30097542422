// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianVerify/cmd/verify/config"
	"github.com/AleutianAI/AleutianVerify/pkg/logging"
	"github.com/AleutianAI/AleutianVerify/services/llm"
)

var (
	flagConfig   string
	flagLogLevel string

	appLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "verify",
		Short: "Validate cited statements in a PDF against reference PDFs",
		Long: `verify extracts citation-bearing statements from a source PDF
(narrative sentences or compatibility-table rows), binds their citation
numbers to the supplied reference PDFs, and adjudicates every pair with
a generative model into a structured verdict set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(flagConfig); err != nil {
				return err
			}
			level := config.Global.Logging.Level
			if flagLogLevel != "" {
				level = flagLogLevel
			}
			appLogger = logging.New(logging.Config{
				Level:   logging.ParseLevel(level),
				LogDir:  config.Global.Logging.Dir,
				Service: "verify",
				JSON:    config.Global.Logging.JSON,
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appLogger != nil {
				_ = appLogger.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.aleutian/verify.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug|info|warn|error)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLLMClient builds the configured backend once per invocation; the
// pipeline receives it as a plain handle.
func newLLMClient() (llm.LLMClient, error) {
	be := config.Global.ModelBackend
	switch be.Type {
	case "openai":
		return llm.NewOpenAIClient(be.BaseURL, "", be.Model)
	case "gemini":
		return llm.NewGeminiClient(be.BaseURL, "", be.Model)
	default:
		return nil, fmt.Errorf("unknown model backend %q", be.Type)
	}
}
