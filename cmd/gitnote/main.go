package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitnote/internal/app"
	"gitnote/internal/config"
	"gitnote/internal/encryption"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// discover locates the repository of the current directory.
func discover() (*app.Environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return app.Discover(cwd)
}

// newApp reads the config and creates a NoteApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "add", "read").
func newApp(cmd *cobra.Command, operation string) (*app.NoteApp, error) {
	env, err := discover()
	if err != nil {
		return nil, err
	}
	cfg, err := env.LoadConfig()
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.NewNoteApp(cmd.Context(), env, cfg, app.Options{
		Operation:  operation,
		Parameters: os.Args[1:],
		Verbose:    verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// run wraps a command body so the operation outcome reaches the log.
func run(cmd *cobra.Command, operation string, body func(a *app.NoteApp, r *app.Renderer) error) error {
	a, err := newApp(cmd, operation)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := body(a, app.NewRenderer(cmd.OutOrStdout())); err != nil {
		a.Fail(err)
		return err
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:          "gitnote",
	Short:        "Line notes for files in a git repository",
	SilenceUsage: true,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note to a line",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		line, _ := cmd.Flags().GetInt("line")
		message, _ := cmd.Flags().GetString("message")

		return run(cmd, "add", func(a *app.NoteApp, r *app.Renderer) error {
			rel, err := a.Add(file, line, message)
			if err != nil {
				return err
			}
			return r.Success("added", rel, line)
		})
	},
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Show a file with its notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		formatted, _ := cmd.Flags().GetBool("formatted")

		return run(cmd, "read", func(a *app.NoteApp, r *app.Renderer) error {
			annotated, err := a.Read(file)
			if err != nil {
				return err
			}
			if formatted {
				return r.JSON(annotated.Note)
			}
			return r.Annotated(annotated)
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replace the note on a line",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		line, _ := cmd.Flags().GetInt("line")
		message, _ := cmd.Flags().GetString("message")

		return run(cmd, "edit", func(a *app.NoteApp, r *app.Renderer) error {
			rel, err := a.Edit(file, line, message)
			if err != nil {
				return err
			}
			return r.Success("edited", rel, line)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the note on a line",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		line, _ := cmd.Flags().GetInt("line")

		return run(cmd, "delete", func(a *app.NoteApp, r *app.Renderer) error {
			rel, err := a.Delete(file, line)
			if err != nil {
				return err
			}
			return r.Success("deleted", rel, line)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List files that have notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, "list", func(a *app.NoteApp, r *app.Renderer) error {
			listings, err := a.List()
			if err != nil {
				return err
			}
			if len(listings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No notes recorded.")
				return nil
			}
			return r.Listings(listings)
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-read notes whenever files change",
	Long: "Watch a single file with --file, or every file that has notes when --file is omitted.\n" +
		"Paths listed in .gitnoteignore at the repository root are skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		formatted, _ := cmd.Flags().GetBool("formatted")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(cmd, "watch", func(a *app.NoteApp, r *app.Renderer) error {
			return a.Watch(ctx, file, func(u app.Update) error {
				if formatted {
					return r.JSON(u.Annotated.Note)
				}
				return r.Update(u)
			})
		})
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := discover()
		if err != nil {
			return err
		}
		if err := config.Init(env.ConfigPath, config.Default(env.NotesHome)); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", env.ConfigPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Notes Home: %s\n", env.NotesHome)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := discover()
		if err != nil {
			return err
		}
		cfg, err := env.LoadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", env.ConfigPath)
		fmt.Fprintf(out, "Repository:    %s\n", env.Resolver.Root())
		fmt.Fprintf(out, "Notes Home:    %s\n", env.NotesHome)
		fmt.Fprintf(out, "Log Dir:       %s\n", env.LogDir)
		fmt.Fprintf(out, "Charset:       %s\n", cfg.Charset)
		fmt.Fprintf(out, "Version Store: %s\n", cfg.VersionStore.Type)
		fmt.Fprintf(out, "Diff Engine:   %s\n", cfg.Diff.Engine)
		fmt.Fprintf(out, "Storage:       %s\n", cfg.Storage.Type)
		fmt.Fprintf(out, "Encryption:    %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate the age identity used for encrypted storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := discover()
		if err != nil {
			return err
		}
		cfg, err := env.LoadConfig()
		if err != nil {
			return err
		}

		enc := encryption.NewAgeEncryptor(cfg.Encryption)
		recipient, err := enc.Setup()
		if err != nil {
			return fmt.Errorf("generating identity: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Identity written to %s\n", cfg.Encryption.IdentityPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Public key: %s\n", recipient)
		fmt.Fprintln(cmd.OutOrStdout(), `Set [encryption] type = "age" to encrypt stored notes.`)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Also write log lines to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeyCmd)

	for _, cmd := range []*cobra.Command{addCmd, readCmd, editCmd, deleteCmd} {
		cmd.Flags().StringP("file", "f", "", "File the note belongs to")
		cmd.MarkFlagRequired("file")
	}
	for _, cmd := range []*cobra.Command{addCmd, editCmd, deleteCmd} {
		cmd.Flags().IntP("line", "l", 0, "Line number, starting at 1")
		cmd.MarkFlagRequired("line")
	}
	for _, cmd := range []*cobra.Command{addCmd, editCmd} {
		cmd.Flags().StringP("message", "m", "", "The note message")
		cmd.MarkFlagRequired("message")
	}
	readCmd.Flags().Bool("formatted", false, "Print the notes as JSON")
	watchCmd.Flags().StringP("file", "f", "", "Watch only this file")
	watchCmd.Flags().Bool("formatted", false, "Print each update as JSON")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
}
