package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/naka-gawa/ai-changelog/internal/actions"
	"github.com/naka-gawa/ai-changelog/internal/backend"
	"github.com/naka-gawa/ai-changelog/internal/config"
	domainErrors "github.com/naka-gawa/ai-changelog/internal/errors"
	"github.com/naka-gawa/ai-changelog/internal/gateway"
	"github.com/naka-gawa/ai-changelog/internal/logger"
	"github.com/naka-gawa/ai-changelog/internal/usecase"
	"github.com/spf13/cobra"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"provider":       config.KeyProvider,
	"model":          config.KeyModel,
	"api-key":        config.KeyAPIKey,
	"categories":     config.KeyCategories,
	"update-release": config.KeyUpdateRelease,
	"timeout":        config.KeyTimeout,
	"api":            config.KeyAPI,
	"repo":           config.KeyRepository,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a changelog for the changes since the previous release",
	Long: `Collects the pull requests merged since the previous release, asks the configured
backend to write a categorized changelog and prints it as Markdown. Inside a GitHub
Action the result is also exposed as the "changelog" step output, and with
--update-release it replaces the body of the triggering release.`,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		debug, _ := cmd.Flags().GetBool("debug")
		noColor, _ := cmd.Flags().GetBool("no-color")
		configPath, _ := cmd.Flags().GetString("config")
		log := logger.New(cmd.ErrOrStderr(), logger.Options{Verbose: verbose, Debug: debug, NoColor: noColor})

		overrides := make(map[string]string)
		for flag, key := range flagKeys {
			if cmd.Flags().Changed(flag) {
				overrides[key] = cmd.Flags().Lookup(flag).Value.String()
			}
		}

		err := runGenerate(cmd.Context(), config.LoadOptions{ConfigPath: configPath, Overrides: overrides}, cmd.OutOrStdout(), log)
		if err != nil {
			log.Error("Failed to generate changelog", "error", err)
			if hint := domainErrors.Suggestion(err); hint != "" {
				log.Error(hint)
			}
			if runner := actions.New(cmd.OutOrStdout()); runner.Running() {
				runner.Error(err.Error())
			}
			return err
		}
		return nil
	},
}

// runGenerate wires the gateway, backend and use cases for one run and writes the result.
func runGenerate(ctx context.Context, opts config.LoadOptions, stdout io.Writer, log *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, log)
	runner := actions.New(stdout)

	settings, err := config.Load(opts)
	if err != nil {
		return err
	}
	log.Info("Configuration loaded", "repo", settings.Owner+"/"+settings.Repo, "request", settings.Request)

	githubGateway, err := gateway.NewGitHubGateway(settings.GitHubToken.Reveal(), settings.GatewayConfig(), log)
	if err != nil {
		return domainErrors.NewConfigError("failed to create GitHub gateway", err)
	}

	generator, err := backend.DefaultRegistry().New(settings.Request.Provider, backend.Options{
		BaseURL: settings.BackendBaseURL(),
		Logger:  log,
	})
	if err != nil {
		return domainErrors.NewConfigError("failed to create backend", err)
	}

	runOpts := usecase.RunOptions{Publish: settings.Publish}
	if settings.Publish {
		runOpts.ReleaseID, err = runner.ReleaseID()
		if err != nil {
			return domainErrors.NewConfigError("failed to read release context", err)
		}
		if runOpts.ReleaseID == 0 {
			log.Warn("Publishing requested but the triggering event is not a release; skipping update")
		}
	}

	changelog := usecase.NewChangelog(
		usecase.NewReleaseDeltaResolver(githubGateway, log),
		usecase.NewChangelogSynthesizer(settings.Request, generator, log),
		githubGateway,
		settings.Request.Categories,
		log,
	)
	result, err := changelog.Run(ctx, runOpts)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, result.Markdown)
	runner.SetOutput("changelog", result.Markdown)
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("provider", config.DefaultProvider, "Text-generation backend (openai or anthropic)")
	generateCmd.Flags().String("model", config.DefaultModel, "Model identifier passed to the backend")
	generateCmd.Flags().String("api-key", "", "Backend API key (or INPUT_API_KEY)")
	generateCmd.Flags().String("categories", config.DefaultCategories, "Comma-separated changelog categories")
	generateCmd.Flags().Bool("update-release", false, "Replace the body of the triggering release with the changelog")
	generateCmd.Flags().String("timeout", config.DefaultTimeout, "Generation request timeout (e.g. 60s)")
	generateCmd.Flags().String("api", string(gateway.APIREST), "GitHub API used for reads (rest or graphql)")
	generateCmd.Flags().StringP("repo", "r", "", "Target repository as owner/name (or GITHUB_REPOSITORY)")
}
