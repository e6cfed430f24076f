package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/insolight/insolight/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "insolight",
		Short: "Insolation and natural-illumination compliance engine",
	}

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(insolationCmd())
	rootCmd.AddCommand(keoCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func solveCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "solve [project-path]",
		Short: "Run insolation and KEO calculations and emit JSON results",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSolve(args[0], date)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "evaluation date (YYYY-MM-DD, default: project dates or today)")
	return cmd
}

func insolationCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "insolation [project-path]",
		Short: "Compute insolation durations for every window",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runInsolation(args[0], date)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "evaluation date (YYYY-MM-DD)")
	return cmd
}

func keoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keo [project-path]",
		Short: "Compute KEO sample grids for every room",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runKEO(args[0])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a building project without running calculations",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local API server for interactive use",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(args[0], port)
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
