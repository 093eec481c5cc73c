// Package cli implements the crmctl commands. They act through the same
// services as the HTTP API, on behalf of the user named by --user.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/evcrm/charger-crm/internal/app"
	"github.com/evcrm/charger-crm/internal/appstate"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/policy"
	"github.com/evcrm/charger-crm/internal/repository"
	"github.com/evcrm/charger-crm/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Session is an opened state with its services
type Session struct {
	State    *appstate.State
	Services *app.Services
	// Close flushes pending snapshot writes and releases the store
	Close func(ctx context.Context) error
}

// Opener opens the session a command runs in
type Opener func(ctx context.Context) (*Session, error)

// NewRootCommand builds the crmctl command tree
func NewRootCommand(open Opener) *cobra.Command {
	var userID string

	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Operate the EV charger CRM from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&userID, "user", "u", "u1", "ID of the acting user")

	// withActor opens the session, resolves the acting user and flushes on return
	withActor := func(cmd *cobra.Command, fn func(ctx context.Context, s *Session, actor *domain.User) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		s, err := open(ctx)
		if err != nil {
			return err
		}

		actor, err := s.Services.Users.Lookup(userID)
		if err == nil && !actor.IsActive() {
			err = fmt.Errorf("user %s is locked", userID)
		}
		if err == nil {
			err = fn(ctx, s, actor)
		}

		if closeErr := s.Close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	}

	root.AddCommand(
		customersCommand(withActor),
		statusCommand(withActor),
		notesCommand(withActor),
		snapshotCommand(withActor),
	)
	return root
}

type actorRunner func(cmd *cobra.Command, fn func(ctx context.Context, s *Session, actor *domain.User) error) error

func customersCommand(run actorRunner) *cobra.Command {
	var (
		search string
		status string
	)

	list := &cobra.Command{
		Use:   "list",
		Short: "List the customers visible to the acting user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters := &repository.CustomerFilters{Search: search}
			if status != "" {
				st := domain.ProjectStatus(strings.ToUpper(status))
				if !st.IsValid() {
					return fmt.Errorf("unknown status %q", status)
				}
				filters.Status = &st
			}

			return run(cmd, func(ctx context.Context, s *Session, actor *domain.User) error {
				customers, err := s.Services.Customers.List(ctx, actor, policy.ViewCustomers, filters)
				if err != nil {
					return err
				}
				return printCustomers(cmd.OutOrStdout(), customers)
			})
		},
	}
	list.Flags().StringVar(&search, "search", "", "Match name, phone or address")
	list.Flags().StringVar(&status, "status", "", "Only customers in this project status")

	customers := &cobra.Command{Use: "customers", Short: "Customer records"}
	customers.AddCommand(list)
	return customers
}

func printCustomers(out io.Writer, customers []domain.CustomerDTO) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tSTATUS\tCHARGER\tASSIGNED")
	for _, c := range customers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.Status, c.ChargerType, c.AssignedTo)
	}
	return tw.Flush()
}

func statusCommand(run actorRunner) *cobra.Command {
	set := &cobra.Command{
		Use:   "set <customer-id> <status>",
		Short: "Move a customer to another project status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := domain.ProjectStatus(strings.ToUpper(args[1]))
			if !st.IsValid() {
				return fmt.Errorf("unknown status %q", args[1])
			}

			return run(cmd, func(ctx context.Context, s *Session, actor *domain.User) error {
				c, err := s.Services.Lifecycle.SetStatus(ctx, actor, args[0], st)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c.ID, c.StatusLabel)
				return nil
			})
		},
	}

	status := &cobra.Command{Use: "status", Short: "Installation progress"}
	status.AddCommand(set)
	return status
}

func notesCommand(run actorRunner) *cobra.Command {
	add := &cobra.Command{
		Use:   "add <customer-id> <text>...",
		Short: "Append a progress note to a customer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")

			return run(cmd, func(ctx context.Context, s *Session, actor *domain.User) error {
				c, err := s.Services.Lifecycle.AddNote(ctx, actor, args[0], text)
				if err != nil {
					return err
				}
				if c == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "note is blank, nothing recorded")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d notes\n", c.ID, len(c.Notes))
				return nil
			})
		},
	}

	notes := &cobra.Command{Use: "notes", Short: "Progress notes"}
	notes.AddCommand(add)
	return notes
}

func snapshotCommand(run actorRunner) *cobra.Command {
	var (
		format string
		output string
	)

	export := &cobra.Command{
		Use:   "export",
		Short: "Write all collections as one YAML or JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format %q (yaml or json)", format)
			}

			return run(cmd, func(_ context.Context, s *Session, actor *domain.User) error {
				if actor.Role != domain.RoleAdmin {
					return &service.PermissionError{Capability: "snapshot export", Reason: "only administrators can export snapshots"}
				}

				slots, err := s.State.Export()
				if err != nil {
					return err
				}
				doc, err := EncodeSnapshot(slots, format)
				if err != nil {
					return err
				}

				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(doc)
					return err
				}
				return os.WriteFile(output, doc, 0o644)
			})
		},
	}
	export.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or json")
	export.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	snapshot := &cobra.Command{Use: "snapshot", Short: "Persisted collections"}
	snapshot.AddCommand(export)
	return snapshot
}

// EncodeSnapshot renders the slot documents as one document keyed by slot name
func EncodeSnapshot(slots map[string][]byte, format string) ([]byte, error) {
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)

	doc := make(map[string]interface{}, len(slots))
	for _, name := range names {
		var v interface{}
		if err := json.Unmarshal(slots[name], &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		doc[name] = v
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
