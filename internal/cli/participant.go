package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cubefour/internal/roster"
)

// ParticipantOptions holds flags shared by the participant subcommands.
type ParticipantOptions struct {
	*RootOptions
	Database string
}

// NewParticipantCommand creates the participant command group.
func NewParticipantCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParticipantOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "participant",
		Short: "Manage the participant roster",
		Long: `Register, list, update and remove named participant modules.

The roster database comes from --db or roster.db in the config file.`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "participant roster database")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <path>",
		Short: "Register a participant, or update the one with the same path or name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoster(opts, func(r *roster.Roster) error {
				p, created, err := r.Upsert(cmd.Context(), args[0], args[1])
				if err != nil {
					return rosterExitError(err)
				}
				f := opts.formatter(cmd)
				if f.JSON() {
					return f.Success(p)
				}
				verb := "Updated"
				if created {
					verb = "Registered"
				}
				return f.Success(fmt.Sprintf("%s %s: %s -> %s", verb, p.ID, p.Name, p.Path))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoster(opts, func(r *roster.Roster) error {
				ps, err := r.List(cmd.Context())
				if err != nil {
					return rosterExitError(err)
				}
				f := opts.formatter(cmd)
				if f.JSON() {
					if ps == nil {
						ps = []roster.Participant{}
					}
					return f.Success(ps)
				}
				if len(ps) == 0 {
					return f.Success("No participants registered.")
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tPATH")
				for _, p := range ps {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Path)
				}
				return tw.Flush()
			})
		},
	})

	var newName, newPath string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a participant's name or path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name, path *string
			if cmd.Flags().Changed("name") {
				name = &newName
			}
			if cmd.Flags().Changed("path") {
				path = &newPath
			}
			if name == nil && path == nil {
				return NewExitError(ExitCommandError, "nothing to update: pass --name or --path")
			}
			return withRoster(opts, func(r *roster.Roster) error {
				p, err := r.Patch(cmd.Context(), args[0], name, path)
				if err != nil {
					return rosterExitError(err)
				}
				f := opts.formatter(cmd)
				if f.JSON() {
					return f.Success(p)
				}
				return f.Success(fmt.Sprintf("Updated %s: %s -> %s", p.ID, p.Name, p.Path))
			})
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new name")
	update.Flags().StringVar(&newPath, "path", "", "new module path")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id|name|path>",
		Short: "Remove a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoster(opts, func(r *roster.Roster) error {
				p, err := r.Resolve(cmd.Context(), args[0])
				if err != nil {
					return rosterExitError(err)
				}
				if err := r.Delete(cmd.Context(), p.ID); err != nil {
					return rosterExitError(err)
				}
				f := opts.formatter(cmd)
				if f.JSON() {
					return f.Success(p)
				}
				return f.Success(fmt.Sprintf("Removed %s (%s)", p.ID, p.Name))
			})
		},
	})

	return cmd
}

// withRoster opens the configured roster for the duration of fn.
func withRoster(opts *ParticipantOptions, fn func(*roster.Roster) error) error {
	dbPath := opts.Database
	if dbPath == "" {
		cfg, err := opts.loadConfig()
		if err != nil {
			return err
		}
		dbPath = cfg.RosterDB
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no roster database: pass --db or set roster.db in the config")
	}

	r, err := roster.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open roster", err)
	}
	defer r.Close()
	return fn(r)
}

func rosterExitError(err error) error {
	switch {
	case errors.Is(err, roster.ErrNotFound):
		return WrapExitError(ExitFailure, "participant not found", err)
	case errors.Is(err, roster.ErrInvalid), errors.Is(err, roster.ErrConflict):
		return WrapExitError(ExitCommandError, "invalid participant", err)
	default:
		return WrapExitError(ExitFailure, "roster error", err)
	}
}
