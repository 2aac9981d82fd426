package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/sparkle/internal/demo"
)

func inspectCmd() *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print an app's decorated initial state",
		Long: `Print an app's decorated initial state as JSON.

Action values are left out.

Examples:
  sparkle inspect --app todo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), app)
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "counter", "App to inspect")

	return cmd
}

func runInspect(w io.Writer, name string) error {
	inst, err := demo.Build(name, demo.Env{})
	if err != nil {
		return err
	}
	defer inst.Close(context.Background())

	data, err := json.MarshalIndent(inst.App.State().Data(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
