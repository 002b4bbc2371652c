package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGroupCommand(ctx *commandContext) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage entry groups",
	}
	groupCmd.AddCommand(newGroupNewCommand(ctx))
	return groupCmd
}

func newGroupNewCommand(ctx *commandContext) *cobra.Command {
	var cover int64

	cmd := &cobra.Command{
		Use:   "new <entry-id>...",
		Short: "Group existing file entries",
		Long:  "Group existing file entries in the order given. The cover defaults to the first entry.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			members := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid entry id %q", arg)
				}
				members = append(members, id)
			}
			if cover == 0 {
				cover = members[0]
			}

			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			id, err := store.NewGroup(cmd.Context(), cover, members)
			if err != nil {
				return fmt.Errorf("create group: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created group %d with %d members (cover %d)\n", id, len(members), cover)
			return nil
		},
	}

	cmd.Flags().Int64Var(&cover, "cover", 0, "Entry used as the group cover (default: first entry)")
	return cmd
}
