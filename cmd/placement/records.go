package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BinitGoswami/my-placement/internal/client"
	"github.com/BinitGoswami/my-placement/internal/model"
	"github.com/BinitGoswami/my-placement/internal/table"
	"github.com/BinitGoswami/my-placement/internal/ui"
)

// newController binds a table controller for res to the CLI's client,
// notifier and change publisher.
func newController(res model.Resource, size model.PageSize, n *cliNotifier) (*table.Controller[model.Record], error) {
	return table.ForResource(apiClient, res, table.Config[model.Record]{
		PageSize:  size,
		Notifier:  n,
		Logger:    logger.With("resource", res.Name),
		Publisher: publisher,
		Origin:    origin,
	})
}

var resourcesCmd = &cobra.Command{
	Use:         "resources",
	Short:       "List the resources your account can manage",
	GroupID:     "records",
	Args:        cobra.NoArgs,
	Annotations: screenOf(screenSignedIn),
	RunE: func(cmd *cobra.Command, args []string) error {
		list := model.ForRole(sessions.Get().Role)
		if jsonOutput {
			return printJSON(list)
		}
		for _, res := range list {
			fmt.Printf("  %-16s %s\n", ui.RenderCommand(res.Name), res.Title)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:         "list <resource>",
	Short:       "List records of a resource",
	GroupID:     "records",
	Args:        cobra.ExactArgs(1),
	Annotations: screenOf(screenResource),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := lookupResource(args[0])
		if err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetString("limit")

		size := cfg.PageSize
		if limit != "" {
			if size, err = model.ParsePageSize(limit); err != nil {
				return err
			}
		}

		n := newCLINotifier()
		ctl, err := newController(res, size, n)
		if err != nil {
			return err
		}
		defer ctl.Close()

		if search != "" {
			ctl.SetSearch(search)
			ctl.CommitSearch()
		} else {
			ctl.Refresh()
		}
		ctl.Wait()
		if page > 1 {
			ctl.SetPage(page)
			ctl.Wait()
		}

		st := ctl.State()
		if st.Status == table.StatusError {
			if err := n.result(); err != nil {
				return err
			}
			return st.Err
		}
		if jsonOutput {
			return printJSON(model.ListResult[model.Record]{Data: st.Items, Total: st.Total})
		}
		if len(st.Items) > 0 {
			printRecordTable(os.Stdout, res, st.Items)
		}
		printListFooter(os.Stdout, st)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:         "show <resource> <id>",
	Short:       "Show one record",
	GroupID:     "records",
	Args:        cobra.ExactArgs(2),
	Annotations: screenOf(screenResource),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := lookupResource(args[0])
		if err != nil {
			return err
		}
		rec, err := apiClient.GetRecord(context.Background(), res, args[1])
		if err != nil {
			return fmt.Errorf("getting %s %s: %w", strings.ToLower(res.Noun), args[1], err)
		}
		if jsonOutput {
			return printJSON(rec)
		}
		printRecordDetail(os.Stdout, rec)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:         "create <resource> -f key=value...",
	Short:       "Create a record",
	GroupID:     "records",
	Args:        cobra.ExactArgs(1),
	Annotations: screenOf(screenResource),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := lookupResource(args[0])
		if err != nil {
			return err
		}
		pairs, _ := cmd.Flags().GetStringArray("field")
		payload, err := parseFields(pairs)
		if err != nil {
			return err
		}
		if len(payload) == 0 {
			return fmt.Errorf("nothing to create: pass at least one -f key=value")
		}

		n := newCLINotifier()
		ctl, err := newController(res, cfg.PageSize, n)
		if err != nil {
			return err
		}
		defer ctl.Close()

		created, err := ctl.Create(context.Background(), payload)
		if err != nil {
			return reported(n, err)
		}
		if jsonOutput {
			return printJSON(created)
		}
		printRecordDetail(os.Stdout, created)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:         "update <resource> <id> -f key=value...",
	Short:       "Update a record",
	GroupID:     "records",
	Args:        cobra.ExactArgs(2),
	Annotations: screenOf(screenResource),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := lookupResource(args[0])
		if err != nil {
			return err
		}
		pairs, _ := cmd.Flags().GetStringArray("field")
		payload, err := parseFields(pairs)
		if err != nil {
			return err
		}
		if len(payload) == 0 {
			return fmt.Errorf("nothing to update: pass at least one -f key=value")
		}

		ctx := context.Background()
		original, err := apiClient.GetRecord(ctx, res, args[1])
		if err != nil {
			return fmt.Errorf("getting %s %s: %w", strings.ToLower(res.Noun), args[1], err)
		}

		n := newCLINotifier()
		ctl, err := newController(res, cfg.PageSize, n)
		if err != nil {
			return err
		}
		defer ctl.Close()

		outcome, err := ctl.Update(ctx, original, payload)
		if err != nil {
			return reported(n, err)
		}
		if jsonOutput {
			return printJSON(map[string]any{"id": args[1], "changed": outcome == table.OutcomeUpdated})
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:         "delete <resource> <id>",
	Short:       "Delete a record",
	GroupID:     "records",
	Args:        cobra.ExactArgs(2),
	Annotations: screenOf(screenResource),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := lookupResource(args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if sess := sessions.Get(); sess != nil && sess.Flags.Frozen {
			return fmt.Errorf("your account is frozen, records cannot be deleted")
		}

		n := newCLINotifier()
		ctl, err := newController(res, cfg.PageSize, n)
		if err != nil {
			return err
		}
		defer ctl.Close()

		gate := ctl.Gate()
		ctl.RequestDelete(model.Record{"id": args[1]})
		if !yes {
			desc, _ := gate.Pending()
			ok, err := confirmPrompt(bufio.NewReader(os.Stdin), os.Stderr, desc)
			if err != nil {
				gate.Cancel()
				return err
			}
			if !ok {
				gate.Cancel()
				fmt.Fprintln(os.Stderr, "Canceled.")
				return nil
			}
		}
		if err := gate.Confirm(context.Background()); err != nil {
			return err
		}
		ctl.Wait()
		return n.result()
	},
}

// reported converts an error the controller already showed into errReported.
// Session expiry is left as is so main can explain it.
func reported(n *cliNotifier, err error) error {
	if errors.Is(err, client.ErrSessionExpired) {
		return err
	}
	if n.failed.Load() {
		return errReported
	}
	return fmt.Errorf("%s", client.UserMessage(err, err.Error()))
}

func init() {
	listCmd.Flags().String("search", "", "only records matching this term")
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().String("limit", "", `records per page, or "all" (default from PLACEMENT_PAGE_SIZE)`)

	createCmd.Flags().StringArrayP("field", "f", nil, "field as key=value (repeatable; values may be JSON)")
	updateCmd.Flags().StringArrayP("field", "f", nil, "field as key=value (repeatable; values may be JSON)")

	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
}
