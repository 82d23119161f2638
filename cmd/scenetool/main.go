// scenetool is a CLI utility for inspecting and post-processing scene
// documents.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/scenepipe/internal/config"
	"github.com/Faultbox/scenepipe/internal/logger"
	"github.com/Faultbox/scenepipe/pkg/postprocess"
	"github.com/Faultbox/scenepipe/pkg/scene"
)

func main() {
	// Parse global flags first; the subcommand follows them.
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "process", "run":
		cmdProcess(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - scene document processing utility

Usage:
  scenetool [options] <command> [arguments]

Options:
  -config <file>   Use the given config file
  -debug           Enable debug logging
  -workers <n>     Number of scenes processed concurrently
  -log-file <file> Write logs to the given file

Commands:
  info <scene.yaml...>               Show scene statistics
  process [options] <scene.yaml...>  Run the post-processing pipeline
  config init|path|show              Manage the config file

Examples:
  scenetool info level01.yaml
  scenetool process -out ./processed level01.yaml level02.yaml
  scenetool -debug -workers 8 process assets/*.yaml
  scenetool config init`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool info <scene.yaml...>")
		os.Exit(1)
	}

	for i, path := range args {
		if i > 0 {
			fmt.Println()
		}

		sc, err := scene.ParseFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printSceneInfo(path, sc)
	}
}

func printSceneInfo(path string, sc *scene.Scene) {
	fmt.Printf("Scene:     %s (%s)\n", sc.Name, path)
	fmt.Printf("Meshes:    %d\n", len(sc.Meshes))
	fmt.Printf("Materials: %d\n", len(sc.Materials))
	fmt.Printf("Slots:     %d\n", sc.TotalSlotCount())

	// Count slots by semantic, most frequent first.
	semCount := make(map[string]int)
	transformed := 0
	for _, mat := range sc.Materials {
		for _, slot := range mat.Slots {
			semCount[slot.Semantic.String()]++
			if !slot.Transform.IsIdentity(postprocess.RotationIdentityTolerance) {
				transformed++
			}
		}
	}

	if len(semCount) > 0 {
		type semStat struct {
			name  string
			count int
		}
		var stats []semStat
		for name, count := range semCount {
			stats = append(stats, semStat{name, count})
		}
		sort.Slice(stats, func(i, j int) bool {
			if stats[i].count != stats[j].count {
				return stats[i].count > stats[j].count
			}
			return stats[i].name < stats[j].name
		})

		fmt.Println()
		fmt.Println("Slots by semantic:")
		for _, s := range stats {
			fmt.Printf("  %-10s %d\n", s.name, s.count)
		}
		fmt.Printf("\nSlots with non-identity transforms: %d\n", transformed)
	}

	for _, mesh := range sc.Meshes {
		channels := mesh.PopulatedUVChannels()
		if len(channels) == 0 && len(mesh.ChannelTransforms) == 0 {
			continue
		}
		fmt.Printf("\nMesh %s: channels %v", mesh.Name, channels)
		if len(mesh.ChannelTransforms) > 0 {
			fmt.Printf(", %d derived", len(mesh.ChannelTransforms))
		}
		fmt.Println()
	}
}

func cmdProcess(args []string) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	outDir := fs.String("out", "", "Output directory (default: alongside input)")
	suffix := fs.String("suffix", "", "Output file name suffix (overrides config)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool process [options] <scene.yaml...>")
		os.Exit(1)
	}

	cfg := loadConfig()
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *suffix != "" {
		cfg.Output.Suffix = *suffix
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	inputs := fs.Args()
	scenes := make([]*scene.Scene, 0, len(inputs))
	for _, path := range inputs {
		sc, err := scene.ParseFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		scenes = append(scenes, sc)
	}

	flags := processFlags(cfg)
	logger.Info("processing scenes",
		zap.Int("count", len(scenes)),
		zap.Stringer("steps", flags),
		zap.Int("workers", cfg.Pipeline.Workers))

	pipeline := postprocess.DefaultPipeline(evalOptions(cfg))
	runErr := pipeline.RunBatch(scenes, flags, cfg.Pipeline.Workers)

	// Write every scene back, including the ones a failed step left
	// untouched.
	for i, sc := range scenes {
		out := outputPath(cfg, inputs[i])
		if err := sc.Save(out); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
			os.Exit(1)
		}
		fmt.Printf("Processed: %s -> %s\n", inputs[i], out)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func cmdConfig(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool config init|path|show")
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		path, err := config.EnsureDefaultConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file: %s\n", path)
	case "path":
		fmt.Println(filepath.Join(config.ConfigDir(), "config.yaml"))
	case "show":
		data, err := yaml.Marshal(loadConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(string(data))
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// processFlags maps the configured step toggles onto pipeline flags.
func processFlags(cfg *config.Config) postprocess.ProcessFlags {
	var flags postprocess.ProcessFlags
	if cfg.Pipeline.Validate {
		flags |= postprocess.FlagValidateScene
	}
	if cfg.Pipeline.TransformUV {
		flags |= postprocess.FlagTransformUVCoords
	}
	if cfg.Pipeline.GenUVData {
		flags |= postprocess.FlagGenUVData
	}
	return flags
}

// evalOptions maps the configured component toggles onto step options.
func evalOptions(cfg *config.Config) postprocess.Options {
	var eval postprocess.EvalFlags
	if cfg.Pipeline.UVTransform.EvalScaling {
		eval |= postprocess.EvalScaling
	}
	if cfg.Pipeline.UVTransform.EvalRotation {
		eval |= postprocess.EvalRotation
	}
	if cfg.Pipeline.UVTransform.EvalTranslation {
		eval |= postprocess.EvalTranslation
	}
	return postprocess.Options{Eval: eval}
}

// outputPath builds the destination path for a processed scene.
func outputPath(cfg *config.Config, input string) string {
	dir := filepath.Dir(input)
	if cfg.Output.Dir != "" {
		dir = cfg.Output.Dir
	}
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	return filepath.Join(dir, stem+cfg.Output.Suffix+ext)
}
