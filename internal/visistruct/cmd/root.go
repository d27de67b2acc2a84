package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	pathpkg "path/filepath"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/danofsteel32/visistruct"
	"github.com/danofsteel32/visistruct/internal/logging"
	"github.com/danofsteel32/visistruct/internal/profile"
	"github.com/danofsteel32/visistruct/internal/ui/render"
	vlog "github.com/danofsteel32/visistruct/internal/visistruct/log"
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the field tree and hex dump without the TUI")
	rootCmd.Flags().BoolP("json", "j", false, "Output the annotation tree as JSON")
	rootCmd.Flags().IntP("width", "w", 0, "Hex dump bytes per row (default 16)")
}

var rootCmd = &cobra.Command{
	Use:   "visistruct <profile> <file>",
	Short: "Visualize the byte layout of parsed binary structures",
	Long: `Visistruct parses a binary file against a declarative structure profile
and recovers the byte offset and size of every field, since the parsed
result alone does not retain that information. The result is shown as a
nested field tree and a hex dump colored per field.`,
	Example: `
# Annotate header.bin against header.yaml interactively
visistruct header.yaml header.bin

# Plain output for piping
visistruct -n header.yaml header.bin

# Machine-readable annotation tree
visistruct -j header.yaml header.bin
  `,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		vlog.Setup(debug)

		profilePath, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve profile path: %v", err)
		}
		filePath, err := pathpkg.Abs(args[1])
		if err != nil {
			return fmt.Errorf("failed to resolve file path: %v", err)
		}
		for _, p := range []string{profilePath, filePath} {
			if _, err := os.Stat(p); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", p)
				}
				return fmt.Errorf("cannot access file: %v", err)
			}
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		width, _ := cmd.Flags().GetInt("width")

		// Also use no-tui mode when output is being piped
		if !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
		}

		if jsonOutput {
			root, _, err := loadAndAnnotate(profilePath, filePath)
			if err != nil {
				return err
			}
			return runJSON(root)
		}

		if noTUI {
			root, raw, err := loadAndAnnotate(profilePath, filePath)
			if err != nil {
				return err
			}
			return runNoTUI(root, raw, width)
		}

		program := tea.NewProgram(
			NewModel(profilePath, filePath, width),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

// loadAndAnnotate runs the whole pipeline: profile -> definition ->
// annotated parse of the file bytes.
func loadAndAnnotate(profilePath, filePath string) (*visistruct.FieldAnnotation, []byte, error) {
	logger := logging.NewLogger()

	p, err := profile.Load(profilePath)
	if err != nil {
		return nil, nil, err
	}
	def, err := p.Compile()
	if err != nil {
		return nil, nil, fmt.Errorf("compile profile %s: %w", profilePath, err)
	}
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	logger.Debug("annotating", "profile", p.Name, "bytes", len(raw))
	root, err := visistruct.Annotate(def, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("annotate %s: %w", filePath, err)
	}
	if root.Size < len(raw) {
		logger.Warn("definition did not consume the whole file",
			"consumed", root.Size, "total", len(raw))
	}
	return root, raw, nil
}

func runNoTUI(root *visistruct.FieldAnnotation, raw []byte, width int) error {
	fmt.Print(render.Tree(root))
	fmt.Println()
	fmt.Print(render.HexDump(root, raw, width))
	return nil
}

func runJSON(root *visistruct.FieldAnnotation) error {
	bts, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal annotation: %w", err)
	}
	fmt.Println(string(bts))
	return nil
}

func Execute() {
	// Check if --no-tui or --json flag is present, or if output is being
	// piped, to bypass fang's markdown rendering
	noTUI := false
	for _, arg := range os.Args[1:] {
		if arg == "--no-tui" || arg == "-n" || arg == "--json" || arg == "-j" {
			noTUI = true
			break
		}
	}

	// Also bypass fang when output is being piped
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		// Use cobra directly to avoid fang's automatic markdown rendering
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	} else {
		// Use fang for enhanced CLI experience with markdown rendering
		if err := fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		); err != nil {
			os.Exit(1)
		}
	}
}
