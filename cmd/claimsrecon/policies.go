package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medreview/claims-reconciler/internal/common"
	"github.com/medreview/claims-reconciler/internal/reconcile"
)

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List the available reimbursement policies",
	RunE:  runPolicies,
}

func init() {
	rootCmd.AddCommand(policiesCmd)
}

func runPolicies(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	svc, err := reconcile.NewService(common.LoadConfig().Pipeline, logger)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(svc.ListPolicies(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
