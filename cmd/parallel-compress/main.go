package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"parallel-compress-go/internal/codec"
	"parallel-compress-go/internal/compressor"
	"parallel-compress-go/internal/config"
	"parallel-compress-go/internal/logger"
	"parallel-compress-go/internal/samples"
	"parallel-compress-go/internal/statistics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	algorithmFlag string
	outputDir     string
	levelFlag     int
	workersFlag   int
	createSamples bool
	sampleCount   int
	sampleSize    int
	verbose       bool
	quiet         bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "parallel-compress [files...]",
	Short: "Compress batches of files concurrently",
	Long: `ParallelCompress compresses a batch of files concurrently across a
bounded worker pool, using gzip, bzip2 or xz.

Features:
- Bounded worker pool sized to the machine and the batch
- Per-file progress lines and an aggregate summary
- Output alongside the input or into a designated directory
- Failures are reported per file and never abort the batch
- Sample-file generation for demos and testing`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompress(cmd, args)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-error output")

	rootCmd.Flags().StringVarP(&algorithmFlag, "algorithm", "a", "", "compression algorithm (gzip, bzip2, xz)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default: alongside each input)")
	rootCmd.Flags().IntVarP(&levelFlag, "level", "l", 0, "compression level (default: per-algorithm)")
	rootCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "number of workers (default: min(CPUs, files))")
	rootCmd.Flags().BoolVar(&createSamples, "create-samples", false, "create sample files for testing")
	rootCmd.Flags().IntVar(&sampleCount, "sample-count", 5, "number of sample files to create")
	rootCmd.Flags().IntVar(&sampleSize, "sample-size", 100, "size of sample files in KB")
}

// initConfig loads configuration file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.parallel-compress")
		viper.AddConfigPath("/etc/parallel-compress")
	}

	viper.AutomaticEnv()
}

// runCompress executes the batch compression logic.
func runCompress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := setupLogger(cfg)

	algorithm, err := codec.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}

	if createSamples {
		return runCreateSamples(cfg, log, algorithm)
	}

	if len(args) == 0 {
		fmt.Println("No files specified. Use --create-samples to create test files.")
		fmt.Println("Usage: parallel-compress file1.txt file2.txt ...")
		return nil
	}

	validFiles := make([]string, 0, len(args))
	for _, path := range args {
		if fileExists(path) {
			validFiles = append(validFiles, path)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %s does not exist, skipping...\n", path)
			log.WithField("file", path).Warn("input file does not exist")
		}
	}

	if len(validFiles) == 0 {
		fmt.Println("No valid files found to compress.")
		return nil
	}

	if cfg.OutputDirectory != "" {
		if err := os.MkdirAll(cfg.OutputDirectory, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	level := cfg.EffectiveLevel(algorithm)
	if cmd.Flags().Changed("level") {
		level = levelFlag
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(validFiles) {
		workers = len(validFiles)
	}

	if !quiet {
		fmt.Printf("Starting parallel compression of %d files\n", len(validFiles))
		fmt.Printf("Algorithm: %s\n", strings.ToUpper(algorithm.String()))
		fmt.Printf("Workers: %d\n", workers)
		fmt.Printf("Compression Level: %d\n", level)
		fmt.Println(strings.Repeat("-", 50))
	}

	jobs := make([]compressor.Job, 0, len(validFiles))
	for _, path := range validFiles {
		jobs = append(jobs, compressor.NewJob(path, cfg.OutputDirectory, algorithm, level))
	}

	comp := compressor.NewDefaultCompressor(log)
	if !quiet {
		comp.OnProgress(printProgress)
	}
	outcomes := comp.Run(cmd.Context(), jobs, workers)

	summary := statistics.Summarize(outcomes)
	if !quiet {
		fmt.Println()
		fmt.Println(summary.Render())
	}

	return nil
}

// runCreateSamples generates demo files and prints how to compress them.
func runCreateSamples(cfg *config.Config, log *logrus.Logger, algorithm codec.Algorithm) error {
	fmt.Printf("Creating %d sample files in %s/\n", sampleCount, cfg.Samples.Directory)

	created, err := samples.Create(cfg.Samples.Directory, sampleCount, sampleSize)
	if err != nil {
		return fmt.Errorf("failed to create sample files: %w", err)
	}

	for _, path := range created {
		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		fmt.Printf("Created: %s (%s)\n", path, statistics.FormatBytes(info.Size()))
	}
	log.WithField("count", len(created)).Info("sample files created")

	fmt.Println("\nSample files created. You can now compress them with:")
	fmt.Printf("parallel-compress %s -a %s\n", strings.Join(created, " "), algorithm)
	return nil
}

// printProgress prints one line per finished file.
func printProgress(out compressor.Outcome) {
	if out.Success {
		fmt.Printf("✓ %s -> %s\n", filepath.Base(out.InputPath), filepath.Base(out.OutputPath))
		fmt.Printf("  Size: %d -> %d bytes\n", out.OriginalSize, out.CompressedSize)
		fmt.Printf("  Ratio: %.1f%% | Time: %.2fs\n", out.Ratio(), out.Elapsed.Seconds())
	} else {
		fmt.Printf("✗ Error compressing %s: %s\n", out.InputPath, out.Message)
	}
}

// loadConfig loads configuration and applies CLI overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	if algorithmFlag != "" {
		cfg.Algorithm = algorithmFlag
	}
	if outputDir != "" {
		cfg.OutputDirectory = outputDir
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workersFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger configures and returns a logger.
func setupLogger(cfg *config.Config) *logrus.Logger {
	loggerCfg := logger.LoggerConfig{
		Level:      cfg.Logging.Level,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Console:    false,
	}

	if verbose {
		loggerCfg.Level = "debug"
	}
	if quiet {
		loggerCfg.Level = "error"
	}

	log, err := logger.NewLogger(loggerCfg)
	if err != nil {
		log = logrus.New()
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// fileExists returns true if the given path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
