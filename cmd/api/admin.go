package main

import (
	"encoding/json"
	"fmt"

	"bankeu-backend/internal/adapter/repository/mysql"
	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/infrastructure/logging"
	"bankeu-backend/internal/usecase/workflow"

	"github.com/spf13/cobra"
)

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.wire(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := mysql.AutoMigrate(d.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logging.Get().Info().Int("tables", len(mysql.Models())).Msg("migrate: done")
			return nil
		},
	}
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) newGateCmd() *cobra.Command {
	var actorID string
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Inspect or toggle the submission window",
	}
	cmd.PersistentFlags().StringVar(&actorID, "actor", "cli", "Top-body actor id recorded on the toggle")

	toggle := func(open bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			d, err := a.wire(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer d.Close()
			st, err := d.gate.SetOpen(cmd.Context(), actor.Actor{ID: actorID, Role: proposal.AuthorityTopBody}, open)
			if err != nil {
				return err
			}
			return a.printJSON(cmd, st)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "open", Short: "Open submission", RunE: toggle(true)},
		&cobra.Command{Use: "close", Short: "Close submission", RunE: toggle(false)},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether submission is open",
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := a.wire(cmd.Context(), false)
				if err != nil {
					return err
				}
				defer d.Close()
				st, err := d.gate.Status(cmd.Context())
				if err != nil {
					return err
				}
				return a.printJSON(cmd, st)
			},
		},
	)
	return cmd
}

func (a *app) newMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Reference-file mirror maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "drain",
		Short: "Process pending mirror jobs once",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.wire(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()
			res, err := d.mirror.Drain(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(cmd, res)
		},
	})
	return cmd
}

func (a *app) newProposalsCmd() *cobra.Command {
	var (
		villageID string
		stage     string
		year      int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "Inspect proposals",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List a village's proposals with their workflow stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.wire(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer d.Close()
			f := proposal.ListFilter{Stage: proposal.Stage(stage), BudgetYear: year}
			items, err := d.workflow.ListProposals(cmd.Context(), actor.Actor{ID: "cli", Role: proposal.AuthorityTopBody}, villageID, f)
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(cmd, struct {
					Items []workflow.ProposalDTO `json:"items"`
					Count int                    `json:"count"`
				}{items, len(items)})
			}
			return renderProposals(cmd.OutOrStdout(), items)
		},
	}
	list.Flags().StringVar(&villageID, "village", "", "Village id (required)")
	list.Flags().StringVar(&stage, "stage", "", "Only proposals in this stage")
	list.Flags().IntVar(&year, "year", 0, "Only proposals for this budget year")
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	_ = list.MarkFlagRequired("village")
	cmd.AddCommand(list)
	return cmd
}
