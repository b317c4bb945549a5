// Command llm-code is an interactive chat client for several LLM backends
// that can pull local files into the conversation with @path references.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	providerName string
	workDir      string
	configPath   string
	verbose      bool
	logFile      string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "llm-code",
	Short: "Chat with multiple LLM providers about your code",
	Long: `llm-code is an interactive chat client for Anthropic, OpenAI, Gemini,
DeepSeek, OpenRouter, Ollama and Bedrock.

Reference files with @path to include them in the conversation, for example:

  @main.go @go.mod how can I simplify this?

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose, logFile)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Send a single message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the files that can be referenced with @",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the connection to every configured provider",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&providerName, "provider", "p", "", "LLM provider to use")
	flags.StringVarP(&workDir, "dir", "C", ".", "workspace directory")
	flags.StringVar(&configPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/llm-code/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(askCmd, filesCmd, checkCmd)
}

// newLogger builds a production logger that only reports warnings unless
// verbose is set
func newLogger(verbose bool, path string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if path != "" {
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
	}
	return config.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
