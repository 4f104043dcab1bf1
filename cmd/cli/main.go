package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/internal/config"
	"github.com/oliverpayne/rotawatch/pkg/cache"
	"github.com/oliverpayne/rotawatch/pkg/clients/portalclient"
	"github.com/oliverpayne/rotawatch/pkg/core/refresh"
	"github.com/oliverpayne/rotawatch/pkg/core/schedule"
	"github.com/oliverpayne/rotawatch/pkg/core/services"
	"github.com/oliverpayne/rotawatch/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg       *config.Config
	creds     config.PortalCredentials
	shifts    *cache.FileStore
	users     *cache.FileUserStore
	portal    *portalclient.Client
	refresher *refresh.Refresher
	logger    *zap.Logger
	ctx       context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rotawatch",
		Short: "Rotawatch - query the scraped staff rota",
		Long:  `A CLI tool that scrapes the staff portal's rota, caches it locally, and answers availability, free-time and swap-eligibility queries.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(rotaCmd())
	rootCmd.AddCommand(freeCmd())
	rootCmd.AddCommand(sharedFreeCmd())
	rootCmd.AddCommand(swapCmd())
	rootCmd.AddCommand(iamCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, stores and the portal client
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting rotawatch", zap.String("environment", env))

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	app.creds, err = config.LoadCredentials()
	if err != nil {
		return fmt.Errorf("failed to load portal credentials: %w", err)
	}

	app.shifts = cache.NewFileStore(app.cfg.CacheFile, app.logger)
	app.users = cache.NewFileUserStore(app.cfg.UsersFile, app.logger)

	app.portal, err = portalclient.NewClient(app.cfg, app.creds, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create portal client: %w", err)
	}

	app.refresher = refresh.New(app.portal, app.shifts, app.logger, app.cfg.RefreshEvery(), app.cfg.Cutoff())
	app.logger.Debug("Application initialized")

	return nil
}

func (a *App) window() schedule.Window {
	return schedule.Window{
		StartMinute:     a.cfg.WindowStartMinute(),
		EndMinute:       a.cfg.WindowEndMinute(),
		MinBlockMinutes: a.cfg.MinFreeBlockMinutes,
	}
}

// Command definitions

func fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Scrape the portal and replace the shift cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := app.refresher.TryRefresh(app.ctx)
			if err != nil {
				if errors.Is(err, refresh.ErrBusy) {
					fmt.Println("A fetch is already running; try again when it finishes.")
					return nil
				}
				return err
			}
			fmt.Printf("\n✓ Fetched and cached %d shifts.\n", count)
			return nil
		},
	}
}

func rotaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rota",
		Short: "Show the rota, filtered by name, day and role (defaults to today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := services.RotaQuery{}
			query.Name, _ = cmd.Flags().GetString("name")
			query.Day, _ = cmd.Flags().GetString("day")
			query.Role, _ = cmd.Flags().GetString("role")

			result, err := services.Rota(app.ctx, app.shifts, app.logger, query, now())
			if err != nil {
				return renderQueryError(err)
			}
			if len(result.Days) == 0 {
				fmt.Println("No shifts found for your query.")
				return nil
			}

			for _, day := range result.Days {
				fmt.Printf("\n%s\n", day.Date.Format("Monday 02 Jan"))
				for _, section := range day.Sections {
					fmt.Printf("  %s:\n", section.Category)
					for _, line := range section.Lines {
						fmt.Printf("    %s: %s–%s (%s)\n", line.Name, line.Start, line.End, line.Role)
					}
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("name", "", "Staff name(s), comma-separated, substring match")
	cmd.Flags().String("day", "", "Day: today, tomorrow, or e.g. '09 Jun'")
	cmd.Flags().String("role", "", "Role(s), comma-separated, substring match")
	return cmd
}

func freeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "free",
		Short: "Find when staff are free on specific days or overall",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := services.FreeQuery{}
			query.Names, _ = cmd.Flags().GetString("names")
			query.Days, _ = cmd.Flags().GetString("days")

			result, err := services.Free(app.ctx, app.shifts, app.logger, query, now())
			if err != nil {
				if errors.Is(err, services.ErrNoFilter) {
					fmt.Println("Please provide at least a name or a day.")
					return nil
				}
				return renderQueryError(err)
			}
			if len(result.Days) == 0 {
				fmt.Println("No matching days found for the given criteria.")
				return nil
			}

			queried := make(map[string]bool, len(result.Queried))
			for _, n := range result.Queried {
				queried[n] = true
			}

			for _, day := range result.Days {
				fmt.Printf("\n%s\n", day.Date.Format("Monday 02-01-06"))
				for _, w := range day.Working {
					if queried[w.Name] {
						fmt.Printf("  ❌ %s is working (%s–%s, %s)\n",
							w.Name, schedule.ClockString(w.Start), schedule.ClockString(w.End), w.Type)
					} else {
						fmt.Printf("  ❌ %s has a shift.\n", w.Name)
					}
				}
				for _, name := range day.Free {
					fmt.Printf("  ✅ %s is free.\n", name)
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("names", "", "Comma-separated staff names (optional)")
	cmd.Flags().String("days", "", "Comma-separated weekdays, e.g. Monday,Tuesday (optional)")
	return cmd
}

func sharedFreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sharedfree",
		Short: "Find shared free blocks for a group of staff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, _ := cmd.Flags().GetString("names")

			days, err := services.SharedFree(app.ctx, app.shifts, app.logger, names, app.window(), now())
			if err != nil {
				return renderQueryError(err)
			}
			if len(days) == 0 {
				fmt.Println("No days in the cache to report on.")
				return nil
			}

			for _, day := range days {
				fmt.Printf("\n%s\n", day.Date.Format("Monday 02 Jan"))
				switch {
				case day.FullyFree:
					fmt.Println("  ✅ Everyone is free all day.")
				case len(day.Blocks) == 0:
					fmt.Println("  ❌ No shared free block long enough.")
				default:
					for _, b := range day.Blocks {
						fmt.Printf("  ✅ %s–%s\n", schedule.ClockString(b.Start), schedule.ClockString(b.End))
					}
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("names", "", "Comma-separated staff names (empty = everyone)")
	return cmd
}

func swapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Find who can swap into a shift (filters: name, day, role)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := schedule.SwapFilters{}
			filters.Name, _ = cmd.Flags().GetString("name")
			filters.Day, _ = cmd.Flags().GetString("day")
			filters.Role, _ = cmd.Flags().GetString("role")

			result, err := services.Swap(app.ctx, app.shifts, app.logger, filters, app.cfg.RestGap(), now())
			if err != nil {
				switch {
				case errors.Is(err, schedule.ErrNoMatch):
					fmt.Println("No shift found with those filters.")
					return nil
				case errors.Is(err, schedule.ErrAmbiguous):
					fmt.Println("More than one shift matches. Please refine your filters.")
					return nil
				}
				return renderQueryError(err)
			}

			t := result.Target
			fmt.Printf("\nShift: %s %s %s–%s (%s)\n",
				t.Name, schedule.PrettyDate(t.Date), t.Record.Start, t.Record.End, t.Role)
			if len(result.Candidates) == 0 {
				fmt.Println("No eligible staff can swap into this shift (based on rest rules & no double shift).")
			} else {
				fmt.Println("Eligible to swap in:")
				for _, name := range result.Candidates {
					fmt.Printf("  • %s\n", name)
				}
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().String("name", "", "Staff name of the target shift")
	cmd.Flags().String("day", "", "Day of the target shift: today, tomorrow, or e.g. '09 Jun'")
	cmd.Flags().String("role", "", "Role(s) of the target shift, comma-separated")
	return cmd
}

func iamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "iam <handle> <full name...>",
		Short: "Bind a chat handle to a rota name for later lookups",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := args[0]
			fullName := strings.Join(args[1:], " ")

			bound, err := services.Identify(app.ctx, app.users, app.logger, handle, fullName)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Bound %s to '%s'.\n", handle, bound)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the periodic background refresh until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching: refreshing every %s (Ctrl+C to stop)\n", app.cfg.RefreshInterval)
			app.refresher.Run(ctx)
			return nil
		},
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (initialise once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without re-initialising.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nStarting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts := strings.Fields(line)
				cmdName := parts[0]
				cmdArgs := parts[1:]

				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("Goodbye!")
					return nil
				}

				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// to avoid re-running PersistentPreRunE which would call initApp() again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("Error parsing flags: %v\n\n", err)
					continue
				}

				cmdArgs = targetCmd.Flags().Args()

				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("Error: %v\n\n", err)
					continue
				}

				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-20s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                 Show this help message")
	fmt.Println("  exit, quit           Exit the interactive session")
}

func now() time.Time {
	return time.Now()
}

// renderQueryError turns the shared query-level failures into friendly
// output; anything else propagates as a command error.
func renderQueryError(err error) error {
	if errors.Is(err, services.ErrNoData) {
		fmt.Println("No cached shift data. Please run 'fetch' first.")
		return nil
	}
	return err
}
