package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/studiowebux/policyctl/internal/cli"
	"github.com/studiowebux/policyctl/internal/config"
	"github.com/studiowebux/policyctl/internal/controller"
	"github.com/studiowebux/policyctl/internal/executor"
	"github.com/studiowebux/policyctl/internal/ingest"
	"github.com/studiowebux/policyctl/internal/keybinds"
	"github.com/studiowebux/policyctl/internal/logging"
	"github.com/studiowebux/policyctl/internal/mock"
	"github.com/studiowebux/policyctl/internal/render"
	"github.com/studiowebux/policyctl/internal/sample"
	"github.com/studiowebux/policyctl/internal/tui"
)

var (
	version = "0.1.0"
)

// saveAuto is the --save value used when the flag is given without a path
const saveAuto = "auto"

func main() {
	if err := rootCmd.Execute(); err != nil {
		// the failure was already reported on stderr
		if !errors.Is(err, cli.ErrAnalysisFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "policyctl [files...]",
	Short: "policyctl - security policy analyzer client",
	Long: `policyctl sends security policy exports and agent logs to a policy
analysis service and shows the narrative it returns.

Run without a subcommand to start the interactive TUI. Files given as
arguments are loaded into the editor on start.

Examples:
  policyctl                                  # Start interactive TUI
  policyctl export.json agent.log            # Start TUI with files loaded
  policyctl run export.json                  # Translate and print the result
  policyctl run -m simulate -q "USB write?" export.json
  cat export.json | policyctl run -m diagnose -o html
  policyctl mock                             # Local mock analysis service
  policyctl sample > sample.json             # Write the integrated sample`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, closer, err := setup(cmd, config.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		return runTUI(settings, args)
	},
}

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Analyze files or stdin and print the result",
	Long: `Analyze policy files (or stdin when none are given, or "-") in one
shot. The mode is prompted for on a terminal unless --mode is set.
Exits with status 1 when the analysis fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, closer, err := setup(cmd, "stderr")
		if err != nil {
			return err
		}
		defer closer.Close()

		return runCLI(cmd, settings, args)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local mock analysis service",
	Long: `Serve the three analysis endpoints with canned narratives so the
client can be exercised without the real service. Responses can be
configured with a YAML or JSON file (--config-file); --init writes a
starter file. Each request is printed to stderr as it is served.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagMockInit != "" {
			if err := mock.WriteStarter(flagMockInit, flagMockForce); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mock config written to %s\n", flagMockInit)
			return nil
		}

		settings, closer, err := setup(cmd, "stderr")
		if err != nil {
			return err
		}
		defer closer.Close()

		return runMock(settings, cmd.ErrOrStderr())
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the integrated six-product sample policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagSampleRaw {
			_, err := out.Write(sample.JSON())
			return err
		}
		_, err := fmt.Fprintln(out, sample.Formatted())
		return err
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Manage TUI keybindings",
}

var keybindsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default keybindings to keybinds.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		path := keybinds.GetDefaultConfigPath(config.ConfigDir)
		if _, err := os.Stat(path); err == nil && !flagKeybindsForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := keybinds.SaveConfig(keybinds.ExportConfig(keybinds.NewDefaultRegistry()), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Keybindings written to %s\n", path)
		return nil
	},
}

var keybindsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate keybinds.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		registry, err := keybinds.LoadOrDefault(keybinds.GetDefaultConfigPath(config.ConfigDir))
		if err != nil {
			return err
		}
		result := keybinds.ValidateRegistry(registry)
		fmt.Fprint(cmd.OutOrStdout(), result.String())
		if result.HasErrors() {
			return fmt.Errorf("invalid keybindings")
		}
		return nil
	},
}

// Persistent flags
var (
	flagConfigFile string
	flagServer     string
	flagTimeout    time.Duration
	flagLogLevel   string
)

// Flags for run
var (
	flagMode       string
	flagQuery      string
	flagOutput     string
	flagFormat     bool
	flagSave       string
	flagCopy       bool
	flagNoPrompt   bool
	flagNoMarkdown bool
	flagStyle      string
)

// Flags for mock, sample and keybinds
var (
	flagMockAddr      string
	flagMockConfig    string
	flagMockInit      string
	flagMockForce     bool
	flagSampleRaw     bool
	flagKeybindsForce bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "Settings file (default ./policyctl.yaml or ~/.policyctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Analysis service base URL")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Request timeout (0 keeps the configured value)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	runCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "Analysis mode (translate/simulate/diagnose)")
	runCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "Simulation query (simulate mode)")
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/markdown/html/json/yaml)")
	runCmd.Flags().BoolVarP(&flagFormat, "format", "f", false, "Pretty-print JSON input before submitting")
	runCmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save result to a file or directory (default directory ~/.policyctl/results)")
	runCmd.Flags().Lookup("save").NoOptDefVal = saveAuto
	runCmd.Flags().BoolVar(&flagCopy, "copy", false, "Copy the raw result to the clipboard")
	runCmd.Flags().BoolVar(&flagNoPrompt, "no-prompt", false, "Never prompt for mode or query")
	runCmd.Flags().BoolVar(&flagNoMarkdown, "no-markdown", false, "Print the narrative without highlighting")
	runCmd.Flags().StringVar(&flagStyle, "style", "", "Highlight style for text output")

	mockCmd.Flags().StringVar(&flagMockAddr, "addr", "", "Listen address (default from settings, :8000)")
	mockCmd.Flags().StringVar(&flagMockConfig, "config-file", "", "Mock responses file (YAML or JSON)")
	mockCmd.Flags().StringVar(&flagMockInit, "init", "", "Write a starter mock config and exit (default mock.yaml)")
	mockCmd.Flags().Lookup("init").NoOptDefVal = "mock.yaml"
	mockCmd.Flags().BoolVar(&flagMockForce, "force", false, "Overwrite an existing file with --init")

	sampleCmd.Flags().BoolVar(&flagSampleRaw, "raw", false, "Print the sample as stored, without indentation")

	keybindsInitCmd.Flags().BoolVar(&flagKeybindsForce, "force", false, "Overwrite an existing keybinds.json")
	keybindsCmd.AddCommand(keybindsInitCmd, keybindsCheckCmd)

	rootCmd.AddCommand(runCmd, mockCmd, sampleCmd, keybindsCmd)
}

// setup initializes the config directory, loads settings, applies flag
// overrides and starts logging. The TUI owns the terminal, so it passes the
// log file as fallbackLog.
func setup(cmd *cobra.Command, fallbackLog string) (*config.Settings, io.Closer, error) {
	if err := config.Initialize(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load(flagConfigFile)
	if err != nil {
		return nil, nil, err
	}

	// Flags override file and environment
	if cmd.Flags().Changed("server") {
		settings.Server.URL = flagServer
	}
	if cmd.Flags().Changed("timeout") {
		settings.Server.Timeout = flagTimeout
	}
	if cmd.Flags().Changed("log-level") {
		settings.Logging.Level = flagLogLevel
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	closer, err := logging.Init(settings.Logging, fallbackLog)
	if err != nil {
		return nil, nil, err
	}

	logging.Component("main").WithFields(logrus.Fields{
		"version": version,
		"server":  settings.Server.URL,
		"timeout": settings.Server.Timeout,
	}).Debug("settings loaded")

	return settings, closer, nil
}

// newAnalyzer builds the analysis client from settings
func newAnalyzer(settings *config.Settings) (*executor.Client, error) {
	tlsConfig := settings.Server.TLS
	if tlsConfig != nil {
		resolved := *tlsConfig
		for _, p := range []*string{&resolved.CertFile, &resolved.KeyFile, &resolved.CAFile} {
			path, err := config.ResolvePath(*p)
			if err != nil {
				return nil, err
			}
			*p = path
		}
		tlsConfig = &resolved
	}

	return executor.NewClient(settings.Server.URL, executor.Options{
		Timeout: settings.Server.Timeout,
		TLS:     tlsConfig,
		Logger:  logging.Component("executor"),
	})
}

func newReader(settings *config.Settings) *ingest.Reader {
	return ingest.NewReader(ingest.Options{
		Concurrency: settings.Ingest.Concurrency,
		MaxFileSize: settings.Ingest.MaxFileSize,
		Logger:      logging.Component("ingest"),
	})
}

// systemClipboard is nil when no clipboard utility is available
func systemClipboard() controller.Clipboard {
	if clipboard.Unsupported {
		return nil
	}
	return controller.ClipboardFunc(clipboard.WriteAll)
}

// runTUI starts the interactive TUI
func runTUI(settings *config.Settings, args []string) error {
	analyzer, err := newAnalyzer(settings)
	if err != nil {
		return err
	}

	var preload []ingest.Source
	if len(args) > 0 {
		for _, a := range args {
			if a == "-" {
				return fmt.Errorf("stdin is not available to the TUI; use `policyctl run -` instead")
			}
		}
		preload, err = ingest.FromPaths(args)
		if err != nil {
			return err
		}
	}

	registry, err := keybinds.LoadOrDefault(keybinds.GetDefaultConfigPath(config.ConfigDir))
	if err != nil {
		return fmt.Errorf("failed to load keybindings: %w", err)
	}
	if result := keybinds.ValidateRegistry(registry); result.HasWarnings() {
		logging.Component("keybinds").Warn(result.String())
	}

	var renderer render.Renderer
	if settings.Render.Markdown {
		renderer = render.NewTerminal(settings.Render.Style)
	}

	return tui.Run(tui.Options{
		Analyzer:  analyzer,
		Renderer:  renderer,
		Clipboard: systemClipboard(),
		Reader:    newReader(settings),
		Keybinds:  registry,
		Logger:    logging.Component("tui"),
		Preload:   preload,
	})
}

// runCLI analyzes files in CLI mode
func runCLI(cmd *cobra.Command, settings *config.Settings, args []string) error {
	analyzer, err := newAnalyzer(settings)
	if err != nil {
		return err
	}

	savePath := flagSave
	if savePath == saveAuto {
		savePath = config.ResultsDir
	}
	style := settings.Render.Style
	if flagStyle != "" {
		style = flagStyle
	}

	opts := cli.RunOptions{
		Paths:        args,
		Mode:         flagMode,
		Query:        flagQuery,
		OutputFormat: flagOutput,
		Format:       flagFormat,
		SavePath:     savePath,
		Copy:         flagCopy,
		NoPrompt:     flagNoPrompt,
		Style:        style,
		Markdown:     settings.Render.Markdown && !flagNoMarkdown,
		Analyzer:     analyzer,
		Reader:       newReader(settings),
		Clipboard:    systemClipboard(),
		Logger:       logging.Component("cli"),
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	}
	return cli.Run(cmd.Context(), opts)
}

// runMock serves the mock analysis service until interrupted, printing
// each served request to out
func runMock(settings *config.Settings, out io.Writer) error {
	gin.SetMode(gin.ReleaseMode)

	mockConfig := &mock.Config{Logging: true}
	workdir, _ := os.Getwd()

	configPath := settings.Mock.Config
	if flagMockConfig != "" {
		configPath = flagMockConfig
	}
	if configPath != "" {
		loaded, err := mock.LoadConfig(configPath)
		if err != nil {
			return err
		}
		mockConfig = loaded
		workdir = filepath.Dir(configPath)
	}

	addr := settings.Mock.Addr
	if flagMockAddr != "" {
		addr = flagMockAddr
	}
	if addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("invalid mock address %q: %w", addr, err)
		}
		portNum, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid mock port %q: %w", port, err)
		}
		if host != "" {
			mockConfig.Host = host
		}
		mockConfig.Port = portNum
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mock.NewServer(mockConfig, workdir, logging.Component("mock"))
	fmt.Fprintf(out, "Mock analysis service on %s (ctrl+c to stop)\n", server.GetAddress())
	if !mockConfig.Logging {
		fmt.Fprintln(out, "Request logging is off in the mock config")
	}
	go server.Follow(ctx, func(l mock.RequestLog) {
		fmt.Fprintln(out, l)
	})
	return server.Run(ctx)
}
