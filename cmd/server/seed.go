package main

import (
	"nightclub_backoffice/internal/repositories"
	"nightclub_backoffice/internal/services"
	"nightclub_backoffice/pkg/utils"

	"github.com/spf13/cobra"
)

var seedTemplatesCmd = &cobra.Command{
	Use:   "seed-templates",
	Short: "Insert the stock ticket templates when none exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		svc := services.NewTicketTemplateService(repositories.NewTicketTemplateRepository(), db)
		n, err := svc.InitializeTemplates(cmd.Context())
		if err != nil {
			return err
		}
		utils.LogInfo("Ticket templates seeded", map[string]interface{}{"inserted": n})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedTemplatesCmd)
}
