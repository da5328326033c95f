package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ufukcicekdev/syncx/internal/models"
	"github.com/ufukcicekdev/syncx/internal/services"
	"github.com/ufukcicekdev/syncx/internal/session"
	"github.com/ufukcicekdev/syncx/internal/shared"
	"github.com/ufukcicekdev/syncx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *services.Client
	social     *services.SocialService
	tokens     *services.TokenService
	analytics  *services.AnalyticsService
	videos     *services.VideoService
	session    *session.Store
	engine     *tasks.Engine
	logger     *log.Logger
	output     io.Writer
	openURL    shared.URLOpener
	prompter   Prompter
	copyText   func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *services.Client
	Session    *session.Store
	Logger     *log.Logger
	Output     io.Writer
	OpenURL    shared.URLOpener
	Prompter   Prompter
	CopyText   func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Prompter == nil {
		opts.Prompter = huhPrompter{}
	}
	if opts.CopyText == nil {
		opts.CopyText = clipboard.WriteAll
	}
	if opts.Client == nil {
		opts.Client = services.NewClient(services.ClientOpts{
			BaseURL: opts.Config.API.BaseURL,
			Logger:  shared.WithLogger(opts.Logger, "component", "client"),
		})
	}

	social := services.NewSocialService(opts.Client)
	analytics := services.NewAnalyticsService(opts.Client)

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		social:     social,
		tokens:     services.NewTokenService(opts.Client),
		analytics:  analytics,
		videos:     services.NewVideoService(opts.Client),
		session:    opts.Session,
		engine:     tasks.NewEngine(social, analytics, shared.WithLogger(opts.Logger, "component", "tasks")),
		logger:     opts.Logger,
		output:     opts.Output,
		openURL:    opts.OpenURL,
		prompter:   opts.Prompter,
		copyText:   opts.CopyText,
	}
	if r.session != nil {
		r.session.Subscribe(func(st session.State) {
			r.logger.Debug("session changed", "phase", st.Phase(), "error", st.Error)
		})
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, accountsCommand, tokensCommand, analyticsCommand, videosCommand, profileCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// expiryNotice tells the user to sign in again when the client gives up on a session.
func expiryNotice(w io.Writer) services.Navigator {
	return services.NavigatorFunc(func(route string) {
		if route == services.RouteLogin {
			fmt.Fprintln(w, "Your session has expired. Run `syncx auth login` to sign in again.")
		}
	})
}

// SetLogger replaces the logger used by the runner and the services it drives.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.client.SetLogger(shared.WithLogger(l, "component", "client"))
	if r.session != nil {
		r.session.SetLogger(shared.WithLogger(l, "component", "session"))
	}
	r.engine = tasks.NewEngine(r.social, r.analytics, shared.WithLogger(l, "component", "tasks"))
}

// requireAuth validates the stored session against the backend and returns the signed-in user.
func (r *Runner) requireAuth(ctx context.Context) (*models.User, error) {
	if r.session == nil {
		return nil, fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}
	if !r.session.CheckAuth(ctx) {
		return nil, fmt.Errorf("%w: run `syncx auth login` first", shared.ErrNotAuthenticated)
	}
	return r.session.State().User, nil
}

// parseID reads a positive numeric argument.
func parseID(cmd *cli.Command, name string) (int64, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// printProgress writes updates from a progress channel until it is closed. The returned channel closes afterwards.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()
	return done
}
