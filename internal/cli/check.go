package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/mattn/go-isatty"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stdinspector/internal/config"
	"stdinspector/internal/flags"
	gh "stdinspector/internal/github"
	gl "stdinspector/internal/gitlab"
	"stdinspector/internal/inspecterr"
	"stdinspector/internal/inspector"
	"stdinspector/internal/output"
	"stdinspector/internal/repository"
	"stdinspector/internal/standards/checks"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Inspect one repository against the standards",
	Long: `Inspect one repository and report which standards it meets.

Sources:
	gitlab  GitLab project by ID, path or URL (--project-id). Token from --token
	        or GITLAB_TOKEN; endpoint from --url, GITLAB_URL or https://gitlab.com.
	github  GitHub repository as owner/repo or URL (--project-id). Token from
	        --token, GITHUB_TOKEN, GH_TOKEN or "gh auth token"; optional for
	        public repositories. --url selects a GitHub Enterprise Server.
	git     A commit of a local clone (--directory, --ref; default HEAD).
	        Uncommitted changes are not inspected.
	local   A plain directory as it is on disk (--directory).

Hosted sources pin --ref (default: the default branch) to a commit when the
repository is opened, so every standard sees the same snapshot.

Output:
	--format checklist (default) prints one line per standard:
	  [✓] met   [✗] CRITICAL standard not met   [⚠] RECOMMENDATION not met
	--format json prints an object keyed by standard code, in evaluation order.

Exit codes:
	0 = no CRITICAL standard failed
	1 = at least one CRITICAL standard failed
	2 = a standard could not be checked
	3 = fatal error (configuration, authentication or access); nothing is printed

Examples:
  stdinspector check --source gitlab --project-id 1234 --format json
  stdinspector check --source github --project-id octo/app --ref v2.1.0
  stdinspector check --source local --directory . --include PY001,PY002
  stdinspector check --source git --directory . --set PY001.min-version=3.11
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}
		os.Exit(runCheck(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()))
	},
}

// runCheck executes one inspection and returns the process exit code.
// Fatal errors are written to stderr and nothing is rendered to stdout.
func runCheck(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) int {
	if ctx == nil {
		ctx = context.Background()
	}
	fatal := func(err error) int {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return inspecterr.ExitFatal
	}

	if err := cfg.Validate(); err != nil {
		return fatal(err)
	}

	registry := checks.Default()
	selected, err := registry.Select(cfg.Standards.Include, cfg.Standards.Exclude)
	if err != nil {
		return fatal(err)
	}
	assignments, err := config.ParseStandardOptionAssignments(cfg.Standards.Set)
	if err != nil {
		return fatal(err)
	}
	if err := registry.Configure(assignments); err != nil {
		return fatal(err)
	}
	renderer, err := output.NewRenderer(cfg.Output.Format, useColor(cfg.Output.Color, stdout))
	if err != nil {
		return fatal(err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	repo, err := openRepository(ctx, cfg.Source)
	if err != nil {
		return fatal(describeOpenError(err, cfg.Source))
	}

	report, err := inspector.New(selected).Check(ctx, repo)
	if err != nil {
		return fatal(describeOpenError(err, cfg.Source))
	}

	stats := repo.Stats()
	logger.WithFields(logger.Fields{
		"repository": repo.Name(),
		"list_calls": stats.ListCalls,
		"read_calls": stats.ReadCalls,
	}).Debug("inspection finished")

	if err := renderer.Render(stdout, report); err != nil {
		return fatal(fmt.Errorf("render report: %w", err))
	}
	return report.ExitCode()
}

func openRepository(ctx context.Context, src config.Source) (*repository.Repository, error) {
	switch src.Type {
	case config.SourceLocal:
		return repository.OpenLocal(src.Directory)
	case config.SourceGit:
		return repository.OpenGit(src.Directory, src.Ref)
	case config.SourceGitLab:
		client, err := gl.NewClient(
			gl.ResolveBaseURL(src.URL),
			gl.ResolveAuthToken(src.Token),
			gl.WithLogger(logger.StandardLogger()),
		)
		if err != nil {
			return nil, err
		}
		return repository.OpenGitLab(ctx, client.Client, src.ProjectID, src.Ref)
	case config.SourceGitHub:
		token, tokenSource, err := gh.ResolveAuthToken(ctx, src.Token, githubHost(src.URL))
		if err != nil {
			return nil, inspecterr.Authentication("resolve GitHub token: %v", err)
		}
		if token == "" {
			logger.Info("no GitHub token found; only public repositories are accessible")
		} else {
			logger.Debugf("using GitHub token from %s", tokenSource)
		}
		opts := []gh.Option{gh.WithLogger(logger.StandardLogger())}
		if src.URL != "" {
			opts = append(opts, gh.WithBaseURL(src.URL))
		}
		client, err := gh.NewClient(ctx, token, opts...)
		if err != nil {
			return nil, err
		}
		return repository.OpenGitHub(ctx, client.Client, src.ProjectID, src.Ref)
	default:
		return nil, inspecterr.Configuration("unsupported source %q", src.Type)
	}
}

// githubHost returns the host gh should resolve a token for.
func githubHost(apiURL string) string {
	if apiURL == "" {
		return ""
	}
	u, err := url.Parse(apiURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func describeOpenError(err error, src config.Source) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: timed out (see --%s): %w", src, flags.FlagTimeout, err)
	}
	return fmt.Errorf("%s: %w", src, err)
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Source
	checkCmd.Flags().StringVar(&cfg.Source.Type, flags.FlagSource, "", "Repository source: gitlab|github|git|local (required)")
	checkCmd.Flags().StringVar(&cfg.Source.ProjectID, flags.FlagProjectID, "", "Hosted project: GitLab ID/path/URL or GitHub owner/repo/URL")
	checkCmd.Flags().StringVar(&cfg.Source.Token, flags.FlagToken, "", "API token (default: GITLAB_TOKEN, or GITHUB_TOKEN/GH_TOKEN/gh auth token)")
	checkCmd.Flags().StringVar(&cfg.Source.URL, flags.FlagURL, "", "API endpoint (GitLab default: GITLAB_URL or https://gitlab.com; GitHub: Enterprise Server URL)")
	checkCmd.Flags().StringVar(&cfg.Source.Ref, flags.FlagRef, "", "Branch, tag or commit to inspect (default: default branch, or HEAD for git)")
	checkCmd.Flags().StringVar(&cfg.Source.Directory, flags.FlagDirectory, "", "Directory to inspect (local and git sources)")

	// Standards
	checkCmd.Flags().StringSliceVar(&cfg.Standards.Include, flags.FlagInclude, nil, "Only run these standard codes (repeatable; comma-separated accepted)")
	checkCmd.Flags().StringSliceVar(&cfg.Standards.Exclude, flags.FlagExclude, nil, "Skip these standard codes (repeatable; comma-separated accepted)")
	checkCmd.Flags().StringSliceVar(&cfg.Standards.Set, flags.FlagSet, nil, "Per-standard options as CODE.option=value (repeatable; comma-separated accepted)")

	// Output
	checkCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, cfg.Output.Format, "Output format: checklist|json")
	checkCmd.Flags().StringVar(&cfg.Output.Color, flags.FlagColor, cfg.Output.Color, "Colorize checklist output: auto|always|never")

	// Runtime
	checkCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout for the run")
}
