package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"techstore/internal/catalog"
	"techstore/internal/http/handlers"
	"techstore/internal/repos"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the catalog file and print what the bot would offer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		if p, _ := cmd.Flags().GetString("path"); p != "" {
			cfg.CatalogPath = p
		}
		cat, err := catalog.Load(cfg.CatalogPath, cfg.CatalogSheet)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "products\t%d\n", cat.Len())
		for _, c := range cat.Categories() {
			for _, m := range cat.Manufacturers(c) {
				models := cat.Models(c, m)
				sort.Strings(models)
				fmt.Fprintf(w, "%s\t%s\t%d models in stock\n", c, m, len(models))
			}
		}
		return w.Flush()
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered bot users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		limit, _ := cmd.Flags().GetInt("limit")
		users, err := repos.NewUserRepo(db).List(limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tCREATED")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s %s\t%s\n", u.ID, u.Username, u.FirstName, u.LastName, u.CreatedAt)
		}
		return w.Flush()
	},
}

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token <token>",
	Short: "Print the bcrypt hash to use as ADMIN_TOKEN_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := handlers.HashToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("path", "", "catalog file (overrides CATALOG_PATH)")
	usersCmd.Flags().Int("limit", 100, "maximum users to list")
}
