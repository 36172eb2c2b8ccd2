package main

import (
	"fmt"

	"github.com/org-hierarchy-api/internal/seed"
	"github.com/org-hierarchy-api/internal/service"
	"github.com/org-hierarchy-api/internal/storage"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	Clear bool
}

func newSeedCmd() *cobra.Command {
	var opts seedOptions

	cmd := &cobra.Command{
		Use:   "seed [--clear]",
		Short: "Fill the database with a sample company structure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, db, logger, err := connect()
			if err != nil {
				return err
			}

			gw := storage.NewGatewayForConfig(db, cfg.Database)
			defer gw.Close()

			if err := storage.Migrate(cmd.Context(), db, cfg.Database.Driver); err != nil {
				return err
			}

			if opts.Clear {
				if err := seed.Clear(cmd.Context(), gw); err != nil {
					return err
				}
				logger.Info("database cleared")
			}

			stats, err := seed.Run(cmd.Context(), service.NewDepartmentService(gw, logger), service.NewEmployeeService(gw, logger))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d departments and %d employees\n", stats.Departments, stats.Employees)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "delete all departments and employees before seeding")
	return cmd
}
