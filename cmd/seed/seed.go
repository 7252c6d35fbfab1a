package seed

import (
	"fmt"
	"strings"

	"github.com/ZamarianPatrick/plantwatch-backend/conf"
	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/ZamarianPatrick/plantwatch-backend/store"
	"github.com/spf13/cobra"
)

func Command(settings *conf.Settings) *cobra.Command {
	var cards []string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load demo data into an empty database",
		Long: `Create the schema and load demo data into an empty database.

Cards can be imported in the legacy format with --card, e.g.
  plantwatch seed --card Card004=4,5,6`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Module("seed")

			db, err := store.Open(settings.Database)
			if err != nil {
				return err
			}
			defer store.Close(db)

			seeded, err := store.SeedDemo(cmd.Context(), db)
			if err != nil {
				return err
			}
			if seeded {
				log.Info().Str("driver", settings.Database.Driver).Msg("demo data loaded")
			} else {
				log.Info().Msg("database already holds plants, demo data skipped")
			}

			for _, c := range cards {
				identifier, plants, ok := strings.Cut(c, "=")
				if !ok || identifier == "" {
					return fmt.Errorf("card %q: expected IDENTIFIER=id,id,...", c)
				}
				if err := store.ImportCard(cmd.Context(), db, identifier, plants); err != nil {
					return fmt.Errorf("card %s: %w", identifier, err)
				}
				log.Info().Str("card", identifier).Str("plants", plants).Msg("card imported")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&cards, "card", nil, "Import a card as IDENTIFIER=plant,plant,... (repeatable)")
	return cmd
}
