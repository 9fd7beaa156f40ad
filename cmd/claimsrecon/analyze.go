package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medreview/claims-reconciler/internal/common"
	"github.com/medreview/claims-reconciler/internal/export"
	"github.com/medreview/claims-reconciler/internal/reconcile"
)

var (
	billPath         string
	prescriptionPath string
	policyName       string
	xlsxPath         string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Reconcile a bill text file against a prescription text file",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&billPath, "bill", "", "Path to extracted bill text (required)")
	f.StringVar(&prescriptionPath, "prescription", "", "Path to extracted prescription text (required)")
	f.StringVar(&policyName, "policy", "", "Policy name: standard, premium or basic (default from RECON_DEFAULT_POLICY)")
	f.StringVar(&xlsxPath, "xlsx", "", "Also write an XLSX report to this path")
	_ = analyzeCmd.MarkFlagRequired("bill")
	_ = analyzeCmd.MarkFlagRequired("prescription")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := setupLogger()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	billText, err := os.ReadFile(billPath)
	if err != nil {
		return fmt.Errorf("read bill: %w", err)
	}
	prescriptionText, err := os.ReadFile(prescriptionPath)
	if err != nil {
		return fmt.Errorf("read prescription: %w", err)
	}

	svc, err := reconcile.NewService(cfg.Pipeline, logger)
	if err != nil {
		return err
	}

	analysis, err := svc.Analyze(string(billText), string(prescriptionText), policyName)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if xlsxPath != "" {
		b, err := export.NewService(cfg.Export, logger).ExportAnalysisXLSX(analysis)
		if err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		if err := os.WriteFile(xlsxPath, b, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}
	return nil
}
