// Package main provides the entry point for the nanotts command.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nanotts/nanotts/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	// input
	inputText string
	inputFile string
	clipboard bool
	markdown  bool

	// output; the remaining flags are read through viper
	outputPath string
	wavOut     bool
	noPlay     bool

	quiet bool

	rootCmd = &cobra.Command{
		Use:   "nanotts [flags] [TEXT...]",
		Short: "Speak text with the Pico synthesizer",
		Long: paragraph(
			fmt.Sprintf("\nSpeak text from the command line, a file, stdin or the clipboard, %s.",
				keyword("to a WAVE file, a raw PCM stream or the speakers")),
		),
		Example: paragraph(strings.Join([]string{
			`nanotts -p "Hello world"`,
			`nanotts -v de-DE --speed 0.8 -f notes.txt -w`,
			`cat story.md | nanotts --markdown -c | aplay -f S16_LE -r 16000`,
		}, "\n")),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			applyQuiet(quiet)
			return nil
		},
		RunE: execute,
	}
)

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	err = rootCmd.Execute()
	_ = closer()
	os.Exit(exitCode(err))
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFile, "config file")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only report warnings and errors")
	rootCmd.PersistentFlags().StringP("lingware", "l", "", "lingware `DIR`")

	flags := rootCmd.Flags()
	flags.SortFlags = false

	flags.StringVarP(&inputText, "input", "i", "", "speak `TEXT`")
	flags.StringVarP(&inputFile, "file", "f", "", "speak the contents of `PATH`")
	flags.BoolVar(&clipboard, "clipboard", false, "speak the clipboard contents")
	flags.BoolVar(&markdown, "markdown", false, "strip markdown before speaking (automatic for .md files)")

	flags.StringVarP(&outputPath, "output", "o", "", "write a WAVE file to `PATH`")
	flags.BoolVarP(&wavOut, "wav", "w", false, "write an auto-numbered WAVE file")
	flags.String("prefix", "", "auto-numbered file name prefix (implies -w)")
	flags.BoolP("stdout", "c", false, "write raw 16-bit PCM to stdout")
	flags.BoolP("play", "p", false, "play through the default audio device")
	flags.BoolVarP(&noPlay, "no-play", "m", false, "never play, even if configured")

	flags.StringP("voice", "v", "", "voice name or ISO 639-2/3166 code (default en-GB)")
	flags.Float64("speed", 0, "speed factor, 0.2 to 5.0")
	flags.Float64("pitch", 0, "pitch factor, 0.5 to 2.0")
	flags.Float64("volume", 0, "volume factor, 0.0 to 5.0")
	flags.String("engine", "", "synthesis engine: pico, exec or mock")
	flags.Bool("cache", false, "reuse audio synthesized earlier for the same text")

	// Config bindings
	_ = viper.BindPFlag("voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("lingware.dir", rootCmd.PersistentFlags().Lookup("lingware"))
	_ = viper.BindPFlag("prosody.speed", flags.Lookup("speed"))
	_ = viper.BindPFlag("prosody.pitch", flags.Lookup("pitch"))
	_ = viper.BindPFlag("prosody.volume", flags.Lookup("volume"))
	_ = viper.BindPFlag("output.prefix", flags.Lookup("prefix"))
	_ = viper.BindPFlag("output.stdout", flags.Lookup("stdout"))
	_ = viper.BindPFlag("output.play", flags.Lookup("play"))
	_ = viper.BindPFlag("cache.enabled", flags.Lookup("cache"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "nanotts")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not find configuration directory.")
		os.Exit(exitFailure)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "nanotts")}, dirs...)
	}

	if c := os.Getenv("NANOTTS_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("nanotts")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("nanotts")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		configFile = used
		return
	}

	configFile = filepath.Join(dirs[0], "nanotts.yml")
	if err := ensureConfigFile(); err != nil {
		log.Debug("Could not create default configuration", "error", err)
	}
}

// readExplicitConfig reads the file named by --config in place of the one
// found in the default places.
func readExplicitConfig(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("config") {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: unable to read config file %s: %w", errUsage, configFile, err)
	}
	log.Debug("Using configuration file", "path", configFile)
	return nil
}
