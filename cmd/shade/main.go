// Command shade runs a WGSL shader from the command line: it registers
// a single window on the graphics reactor, compiles the shader, and
// prints frame statistics. With --watch the shader is recompiled and
// swapped live whenever the file changes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/shade"
	"github.com/gogpu/shade/shader"
	"github.com/gogpu/shade/watch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shade",
		Short:         "Live WGSL shader playground",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

type runOptions struct {
	width      uint32
	height     uint32
	frames     int
	configPath string
	watchFile  bool
	verbose    bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run <shader.wgsl>",
		Short: "Compile a shader and render it continuously",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShader(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().Uint32Var(&opts.width, "width", 800, "surface width")
	cmd.Flags().Uint32Var(&opts.height, "height", 600, "surface height")
	cmd.Flags().IntVar(&opts.frames, "frames", 0, "stop after N frames (0 = run until interrupted)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file")
	cmd.Flags().BoolVar(&opts.watchFile, "watch", false, "recompile when the shader file changes")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging to stderr")
	return cmd
}

func runShader(parent context.Context, path string, opts runOptions) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.verbose {
		shade.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := shade.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = shade.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}

	g, err := shade.New(cfg, shade.WithErrorHandler(func(err error) {
		fmt.Fprintf(os.Stderr, "graphics error: %v\n", err)
	}))
	if err != nil {
		return err
	}
	defer g.Close()

	frames := make(chan shade.FrameInfo, 16)
	win := g.RegisterWindow(shade.Size{Width: opts.width, Height: opts.height},
		shade.FrameFunc(func(fi shade.FrameInfo) {
			select {
			case frames <- fi:
			default:
			}
		}))
	defer win.Destroy()

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read shader: %w", err)
	}
	if err := win.Run(ctx, string(source)); err != nil {
		printShaderError(err)
		return fmt.Errorf("shader %s failed to compile", path)
	}

	var watcher *watch.Watcher
	if opts.watchFile {
		if watcher, err = watch.New(path, 0); err != nil {
			return err
		}
		defer watcher.Close()
		fmt.Fprintf(os.Stderr, "watching %s\n", path)
	}

	return frameLoop(ctx, win, frames, watcher, opts.frames)
}

// frameLoop prints one status line per second and handles hot reload
// until the frame budget is spent or the context is canceled.
func frameLoop(ctx context.Context, win *shade.WindowHandle, frames <-chan shade.FrameInfo, watcher *watch.Watcher, budget int) error {
	var (
		count    int
		last     shade.FrameInfo
		reloads  <-chan string
		watchErr <-chan error
	)
	if watcher != nil {
		reloads = watcher.Sources()
		watchErr = watcher.Errors()
	}
	status := time.NewTicker(time.Second)
	defer status.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fi := <-frames:
			count++
			last = fi
			if budget > 0 && count >= budget {
				fmt.Printf("rendered %d frames, t=%.2fs fps=%.1f\n", count, last.Time, last.FPS)
				return nil
			}
		case <-status.C:
			fmt.Printf("frames=%d t=%.2fs fps=%.1f\n", count, last.Time, last.FPS)
		case src := <-reloads:
			if err := win.Run(ctx, src); err != nil {
				// Keep the previous pipeline running; just show the
				// diagnostic like the in-browser editor would.
				printShaderError(err)
				continue
			}
			fmt.Fprintln(os.Stderr, "shader reloaded")
		case err := <-watchErr:
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

// printShaderError renders a compile diagnostic together with the
// offending source.
func printShaderError(err error) {
	var parseErr *shader.ParseError
	var validateErr *shader.ValidateError
	switch {
	case errors.As(err, &parseErr):
		fmt.Fprintf(os.Stderr, "parse error: %v\n\n%s\n", parseErr.Err, numberLines(parseErr.Source))
	case errors.As(err, &validateErr):
		fmt.Fprintf(os.Stderr, "validation error: %s\n\n%s\n", validateErr.Reason, numberLines(validateErr.Source))
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func numberLines(source string) string {
	var out []byte
	line := 1
	start := 0
	for i := 0; i <= len(source); i++ {
		if i == len(source) || source[i] == '\n' {
			out = fmt.Appendf(out, "%4d | %s\n", line, source[start:i])
			line++
			start = i + 1
		}
	}
	return string(out)
}
