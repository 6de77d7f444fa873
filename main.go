// Package main provides the entry point for the Glance CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/mtomczak/glance/sampler"
)

var (
	configFile string

	header   uint64
	footer   uint64
	girdle   uint64
	rateStr  string
	fixed    uint64
	seed     uint64
	quiet    bool
	showSeed bool

	rootCmd = &cobra.Command{
		Use:   "glance [FILE...]",
		Short: "Sample lines from a stream, keeping a head, a tail, and a random slice of the middle",
		Long: paragraph(
			fmt.Sprintf("\n%s a long stream down to something a terminal can hold: a fixed header, a fixed footer, and a sampled interior.", keyword("Shrink")),
		),
		SilenceErrors:    true,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}

	resolvedCfg sampler.Config
)

// debugConfig carries debug-only knobs that aren't worth cluttering
// the flag surface with.
type debugConfig struct {
	Debug bool `env:"GLANCE_DEBUG"`
}

func parseRate(s string) (float64, error) {
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed rate %q", sampler.ErrInvalidConfig, s)
	}
	if pct {
		v /= 100
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: rate must be non-negative, got %v", sampler.ErrInvalidConfig, v)
	}
	if pct && v > 1 {
		return 0, fmt.Errorf("%w: percentage rate over 100%% is rejected", sampler.ErrInvalidConfig)
	}
	if v > 1 {
		// "rate > 1" reads as 1/X, per spec.md's --rate description.
		v = 1 / v
	}
	return v, nil
}

// validateOptions resolves every flag/config/env source into a single
// sampler.Config, mirroring glow's validateOptions: flags are read
// back out of viper so config-file and environment values participate
// on equal footing with explicit flags.
func validateOptions(cmd *cobra.Command) error {
	header = viper.GetUint64("header")
	footer = viper.GetUint64("footer")
	fixed = viper.GetUint64("fixed")
	seed = viper.GetUint64("seed")
	quiet = viper.GetBool("quiet")
	rateStr = viper.GetString("rate")

	if cmd.Flags().Changed("girdle") {
		header, footer = girdle, girdle
	}

	rate, err := parseRate(rateStr)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = sampler.DeriveSeed()
	}

	cfg := sampler.Config{
		Header: header,
		Footer: footer,
		Rate:   rate,
		Fixed:  fixed,
		Seed:   seed,
		Quiet:  quiet,
	}

	// TTY auto-detection: if stdout is a terminal and no explicit rate
	// was given, derive K from the window size instead.
	if !cmd.Flags().Changed("rate") && !cmd.Flags().Changed("fixed") && term.IsTerminal(int(os.Stdout.Fd())) {
		if rows, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if k := int64(rows) - int64(header+footer+5); k > 0 {
				cfg.Fixed = uint64(k)
				cfg.Rate = 0
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	resolvedCfg = cfg
	return nil
}

func execute(_ *cobra.Command, args []string) error {
	if showSeed {
		fmt.Fprintf(os.Stderr, "seed: 0x%016x\n", resolvedCfg.Seed)
	}

	// With no file arguments, "-" (standard input) is implied.
	if len(args) == 0 {
		args = []string{"-"}
	}
	runInputs(args)
	return nil
}

// newSamplerLogger returns the shared debug logger when --debug or
// GLANCE_DEBUG is set, or nil otherwise. setupLog already redirected
// the default logger to the per-user cache-dir log file; this just
// decides whether the sampler package gets a handle to it.
func newSamplerLogger() *log.Logger {
	cfg, _ := env.ParseAs[debugConfig]()
	if !cfg.Debug && !viper.GetBool("debug") {
		return nil
	}
	return log.Default()
}

func main() {
	closer, err := setupLog()
	if err == nil {
		defer closer() //nolint:errcheck
	}

	// ConfigError (spec.md §7): invalid flags/config fail validation in
	// PersistentPreRunE, before any input is opened. Reported as a
	// single Error:-prefixed line and a status-1 exit; cobra's
	// SilenceErrors is on, so this is the one place such an error is
	// printed, and input errors past it are handled by runInputs instead.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	os.Exit(exitCode)
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	rootCmd.Version = "unknown (built from source)"

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().Uint64VarP(&header, "header", "h", 5, "number of leading lines always kept verbatim")
	rootCmd.Flags().Uint64VarP(&footer, "footer", "f", 5, "number of trailing lines always kept verbatim")
	rootCmd.Flags().Uint64VarP(&girdle, "girdle", "g", 0, "set header = footer = N")
	rootCmd.Flags().StringVarP(&rateStr, "rate", "r", "0.1", "Bernoulli keep-probability for interior lines (a value over 1 reads as 1/X, a trailing % reads as a percentage)")
	rootCmd.Flags().Uint64VarP(&fixed, "fixed", "n", 0, "reservoir size K; 0 disables fixed-size sampling")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "PRNG seed; 0 derives one from time and process id")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the \"...\" markers")
	rootCmd.Flags().BoolVarP(&showSeed, "show-seed", "s", false, "echo the resolved seed to stderr")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "write debug logging to the cache-dir log file")

	_ = viper.BindPFlag("header", rootCmd.Flags().Lookup("header"))
	_ = viper.BindPFlag("footer", rootCmd.Flags().Lookup("footer"))
	_ = viper.BindPFlag("rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("fixed", rootCmd.Flags().Lookup("fixed"))
	_ = viper.BindPFlag("seed", rootCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("quiet", rootCmd.Flags().Lookup("quiet"))
	_ = viper.BindPFlag("debug", rootCmd.Flags().Lookup("debug"))

	viper.SetDefault("header", 5)
	viper.SetDefault("footer", 5)
	viper.SetDefault("rate", "0.1")
	viper.SetDefault("fixed", 0)

	rootCmd.AddCommand(configCmd, manCmd)
}

var debugFlag bool

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "glance")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load configuration directory: %v\n", err)
		return
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "glance")}, dirs...)
	}
	if c := os.Getenv("GLANCE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("glance")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("glance")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		return
	}

	if len(dirs) > 0 {
		configFile = filepath.Join(dirs[0], "glance.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("could not create default configuration", "error", err)
	}
}

// expandPath applies "~" expansion to a user-supplied file argument,
// matching glow's utils.ExpandPath.
func expandPath(p string) string {
	if p == "-" {
		return p
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return p
	}
	return expanded
}
