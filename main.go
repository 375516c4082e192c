package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"tasktracker/commands"
	"tasktracker/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.ErrorText(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := overrides{envFile: ".env"}
	var a *app

	// cobra skips the post-run hooks when RunE fails, so failures close here too
	closeApp := func() error {
		if a == nil {
			return nil
		}
		err := a.Close()
		a = nil
		return err
	}
	finish := func(err error) error {
		if err != nil {
			closeApp()
		}
		return err
	}

	root := &cobra.Command{
		Use:           "tasktracker",
		Short:         "Track tasks from the terminal",
		Long:          "Track tasks from the terminal. Without a subcommand an interactive prompt is started.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(o)
			if err != nil {
				return err
			}
			a, err = openApp(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeApp()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return finish(runREPL(a))
		},
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&o.envFile, "env-file", o.envFile, "dotenv file with TASKTRACKER_* settings")
	root.PersistentFlags().StringVarP(&o.backend, "backend", "b", "", "storage backend (file, sqlite, json)")
	root.PersistentFlags().StringVarP(&o.dataDir, "data-dir", "d", "", "directory holding task, database and log files")

	for _, c := range commands.List() {
		if c.Hidden {
			continue
		}
		root.AddCommand(oneShot(c, finish))
	}
	return root
}

// oneShot exposes a registry command as a cobra subcommand; a failing command
// fails the process. Arguments are rejoined with spaces, so
// "tasktracker status 3,completed" and "tasktracker add Shop, milk, 2, 2025-01-01"
// both work.
func oneShot(c *commands.Command, finish func(error) error) *cobra.Command {
	return &cobra.Command{
		Use:   strings.TrimPrefix(c.Usage(), "/"),
		Short: c.Description,
		RunE: func(cmd *cobra.Command, args []string) error {
			commands.SetOutput(cmd.OutOrStdout())
			_, err := commands.Execute(c.Name + " " + strings.Join(args, " "))
			return finish(err)
		},
	}
}

// newCompleter offers command names, with and without the leading slash, and
// status values for the commands that take one.
func newCompleter() *readline.PrefixCompleter {
	statusItems := func() []readline.PrefixCompleterInterface {
		items := make([]readline.PrefixCompleterInterface, 0, len(storage.ValidStatuses))
		for _, s := range storage.ValidStatuses {
			items = append(items, readline.PcItem(string(s)))
		}
		return items
	}

	var items []readline.PrefixCompleterInterface
	for _, c := range commands.List() {
		for _, name := range []string{c.Name, strings.TrimPrefix(c.Name, "/")} {
			if c.Name == "/filter" {
				items = append(items, readline.PcItem(name, statusItems()...))
				continue
			}
			items = append(items, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

func runREPL(a *app) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     a.cfg.Path(historyFile),
		AutoComplete:    newCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("start prompt: %w", err)
	}
	defer rl.Close()

	commands.SetOutput(rl.Stdout())
	fmt.Fprintln(rl.Stdout(), "Welcome to the task tracker! Type help for available commands.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		quit, err := commands.Execute(input)
		if err != nil {
			fmt.Fprintln(rl.Stdout(), commands.ErrorText(err))
			continue
		}
		if quit {
			return nil
		}
	}
}
