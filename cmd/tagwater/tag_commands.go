package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tagwater/internal/catalog"
)

func newTagCommand(ctx *commandContext) *cobra.Command {
	tagCmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage the tag registry",
	}

	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage tag categories",
	}
	categoryCmd.AddCommand(newTagCategoryAddCommand(ctx))
	categoryCmd.AddCommand(newTagCategoryFindCommand(ctx))

	tagCmd.AddCommand(newTagAddCommand(ctx))
	tagCmd.AddCommand(newTagFindCommand(ctx))
	tagCmd.AddCommand(categoryCmd)
	return tagCmd
}

func newTagAddCommand(ctx *commandContext) *cobra.Command {
	var category string
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>...",
		Short: "Register one or more tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			categoryID, err := resolveCategory(cmd, store, category)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, name := range args {
				id, err := store.NewTag(cmd.Context(), name, categoryID, description)
				switch {
				case errors.Is(err, catalog.ErrAlreadyExists):
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "Tag %s already exists\n", name)
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "Added tag %s (id %d)\n", name, id)
				}
			}
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category for the new tags (default: catalog.default_category)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description stored with each tag")
	return cmd
}

func newTagFindCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "find [text]",
		Short: "List tags whose name contains text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			var categoryID int64
			if strings.TrimSpace(category) != "" {
				if categoryID, err = resolveCategory(cmd, store, category); err != nil {
					return err
				}
			}
			tags, err := store.FindTags(cmd.Context(), firstArg(args), categoryID)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags found")
				return nil
			}

			title := cases.Title(language.English)
			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{
					strconv.FormatInt(tag.ID, 10),
					tag.Name,
					title.String(tag.Category),
					tag.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []string{"ID", "Name", "Category", "Description"}, rows,
				[]columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Restrict the search to one category")
	return cmd
}

func newTagCategoryAddCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a tag category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			id, err := store.NewTagCategory(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (id %d)\n", strings.TrimSpace(args[0]), id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Category description")
	return cmd
}

func newTagCategoryFindCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "find [text]",
		Short: "List categories whose name contains text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.catalog()
			if err != nil {
				return err
			}
			categories, err := store.FindTagCategories(cmd.Context(), firstArg(args))
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories found")
				return nil
			}

			title := cases.Title(language.English)
			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []string{strconv.FormatInt(c.ID, 10), title.String(c.Name), c.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable("", []string{"ID", "Name", "Description"}, rows,
				[]columnAlignment{alignRight}))
			return nil
		},
	}
}

// resolveCategory maps a category name to its ID, falling back to the
// configured default when name is empty.
func resolveCategory(cmd *cobra.Command, store *catalog.Store, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = store.DefaultCategory()
	}
	id, ok, err := store.TagCategoryID(cmd.Context(), name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("tag category %q not found", name)
	}
	return id, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
