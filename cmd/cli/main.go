package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/leaseledger/internal/adapter/http/dto"
	"github.com/iho/leaseledger/internal/domain"
	"github.com/iho/leaseledger/internal/schedule"
)

var (
	baseURL  string
	timeout  time.Duration
	tenantID string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "leaseledger-cli",
		Short:         "LeaseLedger CLI tool",
		Long:          `A command line interface for projecting lease schedules and driving the LeaseLedger period-end API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LeaseLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&tenantID, "tenant", "", "Tenant ID sent as X-Tenant-ID")

	rootCmd.AddCommand(scheduleCmd(), periodEndCmd(), postPeriodCmd(), previewCmd())
	return rootCmd
}

// scheduleCmd projects a lease schedule locally without touching the API.
func scheduleCmd() *cobra.Command {
	var (
		leaseNumber  string
		description  string
		commencement string
		end          string
		payment      string
		frequency    string
		rate         string
		rou          string
		liability    string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Project the amortization schedule of a lease",
		RunE: func(cmd *cobra.Command, args []string) error {
			lease, err := buildLease(leaseNumber, description, commencement, end, payment, frequency, rate, rou, liability)
			if err != nil {
				return err
			}
			printSchedule(cmd.OutOrStdout(), lease, schedule.New().ComputeSchedule(lease))
			return nil
		},
	}

	cmd.Flags().StringVar(&leaseNumber, "lease-number", "LEASE-CLI", "Lease number")
	cmd.Flags().StringVar(&description, "asset", "", "Asset description")
	cmd.Flags().StringVar(&commencement, "commencement", "", "Commencement date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&payment, "payment", "", "Payment per interval")
	cmd.Flags().StringVar(&frequency, "frequency", "monthly", "Payment frequency: monthly, quarterly, semi_annually, annually")
	cmd.Flags().StringVar(&rate, "rate", "0", "Annual discount rate as a decimal fraction")
	cmd.Flags().StringVar(&rou, "rou", "", "Initial ROU asset (defaults to the present value of payments)")
	cmd.Flags().StringVar(&liability, "liability", "", "Initial lease liability (defaults to the present value of payments)")
	_ = cmd.MarkFlagRequired("commencement")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("payment")

	return cmd
}

func buildLease(leaseNumber, description, commencement, end, payment, frequency, rate, rou, liability string) (*domain.Lease, error) {
	start, err := dto.ParseDate(commencement)
	if err != nil {
		return nil, err
	}
	endDate, err := dto.ParseDate(end)
	if err != nil {
		return nil, err
	}
	freq, err := domain.ParsePaymentFrequency(frequency)
	if err != nil {
		return nil, err
	}
	paymentAmount, err := decimal.NewFromString(payment)
	if err != nil {
		return nil, fmt.Errorf("invalid payment %q: %w", payment, err)
	}
	discountRate, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}

	lease := &domain.Lease{
		LeaseNumber:      leaseNumber,
		AssetDescription: description,
		CommencementDate: schedule.NormalizeDate(start),
		EndDate:          schedule.NormalizeDate(endDate),
		LeasePayment:     paymentAmount,
		PaymentFrequency: freq,
		DiscountRate:     discountRate,
		Currency:         "USD",
		Status:           domain.LeaseStatusActive,
	}
	if err := lease.Validate(); err != nil {
		return nil, err
	}

	lease.InitialLeaseLiability, err = optionalAmount(liability, schedule.ComputeInitialLiability(lease))
	if err != nil {
		return nil, err
	}
	lease.InitialROUAsset, err = optionalAmount(rou, schedule.ComputeInitialROU(lease))
	if err != nil {
		return nil, err
	}
	return lease, nil
}

func optionalAmount(s string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return schedule.RoundMoney(d), nil
}

func printSchedule(out io.Writer, lease *domain.Lease, calcs []*domain.LeaseCalculation) {
	fmt.Fprintf(out, "Lease %s %s\n", lease.LeaseNumber, truncate(lease.AssetDescription, 40))
	fmt.Fprintf(out, "Initial ROU asset: %s  Initial liability: %s  Periods: %d\n\n",
		lease.InitialROUAsset.StringFixed(2), lease.InitialLeaseLiability.StringFixed(2), len(calcs))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Period\tPayment\tInterest\tAmortization\tROU asset\tLiability\t")
	for _, c := range calcs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.PeriodDate.Format(dto.DateLayout),
			c.LeasePayment.StringFixed(2),
			c.InterestExpense.StringFixed(2),
			c.AmortizationExpense.StringFixed(2),
			c.EndingROUAsset.StringFixed(2),
			c.EndingLeaseLiability.StringFixed(2),
		)
	}
	_ = tw.Flush()

	sum := schedule.Summarize(calcs)
	fmt.Fprintf(out, "\nTotal payments: %s  Total interest: %s  Total amortization: %s\n",
		sum.TotalLeasePayments.StringFixed(2),
		sum.TotalInterestExpense.StringFixed(2),
		sum.TotalAmortizationExpense.StringFixed(2),
	)
}

func periodEndCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "period-end",
		Short: "Run the period-end batch for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.PeriodEndResponse
			if err := callAPI(cmd.Context(), http.MethodPost, "/api/v1/calculations/period-end", dto.PeriodRequest{PeriodDate: period}, &resp); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			if !resp.Success {
				return fmt.Errorf("period-end finished with %d failures", len(resp.Failures))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "Period date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func postPeriodCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "post-period",
		Short: "Post a period's unposted calculations to the ERP",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.PostingResponse
			err := callAPI(cmd.Context(), http.MethodPost, "/api/v1/erp/post-period", dto.PeriodRequest{PeriodDate: period}, &resp)
			if resp.Message != "" {
				printJSON(cmd.OutOrStdout(), resp)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "Period date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func previewCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the journal a period would post",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.PreviewResponse
			path := "/api/v1/calculations/preview?period_date=" + url.QueryEscape(period)
			if err := callAPI(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "Period date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

// callAPI sends body as JSON and decodes the response into out. Error bodies are
// decoded too so partial results can still be printed.
func callAPI(ctx context.Context, method, path string, body, out any) error {
	if tenantID == "" {
		return fmt.Errorf("--tenant is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Tenant-ID", tenantID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		_ = json.Unmarshal(raw, out)
		var apiErr dto.ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(out io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to encode output: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
