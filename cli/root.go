// Package cli wires configuration, clients and the reviewer into the prreview command.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shipitai/prreview/config"
	"github.com/shipitai/prreview/github"
	"github.com/shipitai/prreview/i18n"
	"github.com/shipitai/prreview/llm"
	"github.com/shipitai/prreview/review"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

type options struct {
	configPath string
	dryRun     bool
	verbose    bool
}

// Run executes the command and returns the process exit code.
// Every error, from flag parsing to the comment post, is reported once here and maps to ExitFailure.
func Run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd := newRootCommand(getenv, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger := slog.New(slog.NewTextHandler(stderr, nil))
		logger.Error("review failed", "error", err)
		return ExitFailure
	}
	return ExitSuccess
}

func newRootCommand(getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "prreview",
		Short: "Post an AI code review comment on the current pull request",
		Long:  "prreview reads the pull request from GITHUB_REPOSITORY and GITHUB_REF, asks a language model to review its diff and posts the answer as a PR comment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd.Context(), opts, getenv, stdout, newLogger(stderr, opts.verbose))
		},
	}
	// Run reports errors itself.
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a YAML settings file (default $"+config.EnvSettingsPath+")")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the review comment instead of posting it")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print prreview version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prreview version %s\n", version)
		},
	})

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runReview(ctx context.Context, opts *options, getenv func(string) string, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := config.FromEnv(getenv, opts.configPath)
	if err != nil {
		return err
	}

	logger.Info("resolved pull request",
		"pr", cfg.PullRequest.String(),
		"provider", cfg.LLM.Provider,
		"language", cfg.Language,
	)
	logger.Debug("using API key", "api_key_hint", llm.KeyHint(cfg.LLM.APIKey))

	githubClient, err := newGitHubClient(ctx, cfg)
	if err != nil {
		return err
	}

	completer, err := llm.New(cfg.LLM)
	if err != nil {
		return err
	}

	trans, err := i18n.NewTranslations(cfg.Language)
	if err != nil {
		return err
	}

	reviewer := review.NewReviewer(githubClient, completer, review.NewPromptBuilder(trans), logger)
	if opts.dryRun {
		reviewer.SetDryRun(stdout)
	}

	result, err := reviewer.Review(ctx, cfg.PullRequest)
	if err != nil {
		return err
	}

	if result.Posted {
		logger.Info("review posted successfully", "url", result.CommentURL)
	}
	return nil
}

func newGitHubClient(ctx context.Context, cfg *config.Config) (*github.Client, error) {
	if cfg.GitHubToken != "" {
		return github.NewTokenClient(ctx, cfg.GitHubToken, cfg.GitHubAPIURL)
	}

	app := cfg.GitHubApp
	privateKey, err := os.ReadFile(app.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", app.PrivateKeyPath, err)
	}

	return github.NewAppClient(app.AppID, app.InstallationID, privateKey, cfg.GitHubAPIURL)
}
