package main

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/docpipeops/docpipe/docpipe/commandmanager"
	"github.com/docpipeops/docpipe/docpipe/config"
	"github.com/docpipeops/docpipe/docpipe/converter"
	"github.com/docpipeops/docpipe/docpipe/packagemanager"
	"github.com/docpipeops/docpipe/docpipe/pipeline"
)

var (
	cfgFile     string
	cfgExplicit bool
	logFileName string
	debug       bool
	outputDir   string

	remoteHost         string
	remoteUser         string
	passwordPrompt     bool
	keyPassPrompt      bool
	sudoPasswordPrompt bool

	logger = logrus.New()
)

type sshDialerImpl struct{}

func (s sshDialerImpl) Dial(network, addr string, cfg *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	cfg.Timeout = timeout
	return ssh.Dial(network, addr, cfg)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docpipe",
		Short: "OCR document pipeline: convert, filter, compare, export",
		Long: `docpipe converts PDFs and images to markdown through an external OCR
converter, cleans the output (Arabic-range stripping, line deduplication),
compares document pairs and exports results to JSON. The reconcile
subcommand brings a host's OCR-backend packages to the expected state at
deploy time.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfgExplicit = cmd.Root().PersistentFlags().Changed("config")
			setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "docpipe.ini", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&logFileName, "log", "", "Log file name (default stderr)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug log level")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output directory override")
	rootCmd.PersistentFlags().StringVar(&remoteHost, "remote-host", "", "Run host-mutating commands on this host over SSH")
	rootCmd.PersistentFlags().StringVar(&remoteUser, "remote-user", "", "Username for the SSH connection")
	rootCmd.PersistentFlags().BoolVar(&passwordPrompt, "password", false, "Prompt for an SSH password")
	rootCmd.PersistentFlags().BoolVar(&keyPassPrompt, "keypass", false, "Prompt for an SSH key passphrase")
	rootCmd.PersistentFlags().BoolVar(&sudoPasswordPrompt, "sudo-password", false, "Prompt for a sudo password")

	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func setupLogger() {
	if logFileName != "" {
		file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Fatal(err)
		}
		logger.SetOutput(file)
	}

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cfgExplicit)
	if err != nil {
		return nil, err
	}

	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if remoteHost != "" {
		cfg.Remote.Hostname = remoteHost
	}
	if remoteUser != "" {
		cfg.Remote.User = remoteUser
	}
	return cfg, nil
}

func buildCommandManager(cfg *config.Config) (*commandmanager.UnixCommandManager, error) {
	creds := commandmanager.Credentials{User: cfg.Remote.User}

	if passwordPrompt {
		password, err := readPassword("Enter SSH password: ")
		if err != nil {
			return nil, err
		}
		creds.Password = password
	}
	if keyPassPrompt {
		passphrase, err := readPassword("Enter SSH key passphrase: ")
		if err != nil {
			return nil, err
		}
		creds.KeyPassphrase = passphrase
	}
	if sudoPasswordPrompt {
		password, err := readPassword("Enter sudo password: ")
		if err != nil {
			return nil, err
		}
		creds.SudoPassword = password
	}

	return &commandmanager.UnixCommandManager{
		Hostname:    cfg.Remote.Hostname,
		SSHClient:   sshDialerImpl{},
		Credentials: creds,
	}, nil
}

func buildPackageManager(cfg *config.Config, cm commandmanager.CommandManager) (packagemanager.PackageManager, error) {
	switch cfg.Reconcile.Installer {
	case "", "pip":
		return &packagemanager.PipPackageManager{
			CommandManager: cm,
			Binary:         cfg.Reconcile.PipBinary,
			Sudo:           cfg.Reconcile.Sudo,
		}, nil
	case "uv":
		return &packagemanager.UvPackageManager{CommandManager: cm}, nil
	default:
		return nil, fmt.Errorf("unknown installer %q (want pip or uv)", cfg.Reconcile.Installer)
	}
}

// buildRunner wires the conversion pipeline. The converter reads inputs and
// collects output from the local filesystem, so it always runs on a local
// command manager; [remote] applies to reconciliation only.
func buildRunner(cfg *config.Config) *pipeline.Runner {
	ocr := &converter.DoclingConverter{
		CommandManager: &commandmanager.UnixCommandManager{},
		Binary:         cfg.Converter.Binary,
	}
	return pipeline.New(ocr, cfg.Output.Dir, logger)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
