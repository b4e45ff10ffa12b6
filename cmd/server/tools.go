package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"counsellor-console/models"
	"counsellor-console/services/leads"
	"counsellor-console/services/reports"
)

var (
	importSource     string
	importCounsellor string

	exportOut    string
	exportType   string
	exportFrom   string
	exportTo     string
	exportStatus string
)

var importLeadsCmd = &cobra.Command{
	Use:   "import-leads <file.xlsx>",
	Short: "Create leads from a spreadsheet",
	Long: `Reads the first sheet of an xlsx file and creates one lead per row.

Example:
  console import-leads leads.xlsx --source counsellor_ref --counsellor C42`,
	Args: cobra.ExactArgs(1),
	RunE: runImportLeads,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reports to files",
}

var exportStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Write the status report as xlsx",
	RunE:  runExportStatus,
}

var exportPaymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Write the payment report as pdf",
	RunE:  runExportPayments,
}

func init() {
	importLeadsCmd.Flags().StringVar(&importSource, "source", "", "Source for rows without one")
	importLeadsCmd.Flags().StringVar(&importCounsellor, "counsellor", "", "Counsellor id to attach to every lead")

	exportCmd.PersistentFlags().StringVarP(&exportOut, "out", "o", "", "Output file (default: generated name)")
	exportCmd.PersistentFlags().StringVar(&exportFrom, "from", "", "Start date YYYY-MM-DD")
	exportCmd.PersistentFlags().StringVar(&exportTo, "to", "", "End date YYYY-MM-DD")
	exportStatusCmd.Flags().StringVar(&exportType, "type", "", "Report type: colleges, l2 or l3")
	exportPaymentsCmd.Flags().StringVar(&exportStatus, "status", "", "Payment status filter")
	exportCmd.AddCommand(exportStatusCmd, exportPaymentsCmd)
}

func runImportLeads(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := leads.ParseWorkbook(f, leads.Defaults{Source: importSource, CounsellorID: models.ID(importCounsellor)})
	if err != nil {
		return err
	}
	res := leads.NewService(newCRMClient(), cfg.DispatchConcurrency).Import(cmd.Context(), rows)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d rows: %d created, %d failed, %d duplicates\n", res.Total, res.Success, res.Failed, res.Duplicates)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  row %d (%s): %s\n", e.Row, e.Email, e.Error)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d rows failed", res.Failed)
	}
	return nil
}

func runExportStatus(cmd *cobra.Command, args []string) error {
	svc := reports.NewService(newCRMClient())
	report, err := svc.Status(cmd.Context(), models.StatusReportFilter{
		ReportType: exportType,
		StartDate:  exportFrom,
		EndDate:    exportTo,
	})
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := reports.WriteStatusXLSX(&buf, report); err != nil {
		return err
	}
	return writeExport(cmd, svc.StatusFileName(report.ReportType), buf.Bytes())
}

func runExportPayments(cmd *cobra.Command, args []string) error {
	svc := reports.NewService(newCRMClient())
	filter := models.PaymentReportFilter{Status: exportStatus, FromDate: exportFrom, ToDate: exportTo}
	report, err := svc.Payments(cmd.Context(), filter)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := reports.WritePaymentPDF(&buf, report, filter, svc.Now()); err != nil {
		return err
	}
	return writeExport(cmd, svc.PaymentsFileName(), buf.Bytes())
}

func writeExport(cmd *cobra.Command, name string, data []byte) error {
	path := exportOut
	if path == "" {
		path = name
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
