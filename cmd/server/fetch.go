package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/georgeshao/results-proxy/internal/output"
	"github.com/georgeshao/results-proxy/internal/relay"
	"github.com/georgeshao/results-proxy/internal/upstream"
)

var (
	fetchStatus string
	fetchOutput string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one invocation against the upstream and print the result.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchOutput != "json" && fetchOutput != "table" {
			return fmt.Errorf("invalid output %q (want json or table)", fetchOutput)
		}

		client := upstream.NewClient(upstream.Config{
			URL:               cfg.Upstream.URL,
			MaxRedirects:      cfg.Upstream.MaxRedirects,
			RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
			ReadBufferSize:    cfg.Upstream.ReadBufferSize,
		})
		r := relay.New(client, logger)

		env := r.Handle(cmd.Context(), "cli_"+uuid.New().String(), fetchStatus)
		if !env.Success {
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "upstream %d: %s\n", env.StatusCode, env.Error)
			return fmt.Errorf("fetch failed with status %d", env.StatusCode)
		}

		if fetchOutput == "table" {
			return output.WriteTable(cmd.OutOrStdout(), env.Results)
		}
		return output.WriteJSON(cmd.OutOrStdout(), env)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchStatus, "status", "", "keep only records whose status contains this text")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "json", "output format: json or table")
}
