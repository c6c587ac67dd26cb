package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"financaszen/internal/core"
	"financaszen/internal/finance"
)

func newCalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Loan and installment calculators",
	}
	cmd.AddCommand(newInstallmentCmd(), newRateCmd(), newScheduleCmd())
	return cmd
}

// moneyFlag parses amounts typed either as 1.234,56 or 1234.56.
func moneyFlag(name, v string) (core.Money, error) {
	m, err := core.ParseMoney(v)
	if err != nil {
		return m, fmt.Errorf("--%s: %w", name, err)
	}
	return m, nil
}

func pct(fraction float64) string {
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).StringFixed(4) + "%"
}

func newInstallmentCmd() *cobra.Command {
	var principal string
	var rate float64
	var months int
	cmd := &cobra.Command{
		Use:   "installment",
		Short: "Fixed monthly payment of a loan (Price table)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := moneyFlag("principal", principal)
			if err != nil {
				return err
			}
			pmt, err := finance.Installment(p.Float(), rate/100, months)
			if err != nil {
				return err
			}
			inst := core.FromFloat(pmt)
			total := inst.MulFloat(float64(months))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Installment: %s\n", inst.Format())
			fmt.Fprintf(out, "Total:       %s\n", total.Format())
			fmt.Fprintf(out, "Interest:    %s\n", total.Sub(p).Format())
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "Amount financed")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Monthly interest rate in percent")
	cmd.Flags().IntVar(&months, "months", 12, "Number of installments")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}

func newRateCmd() *cobra.Command {
	var value, total string
	var installments int
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Implied interest rate of an installment purchase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := moneyFlag("value", value)
			if err != nil {
				return err
			}
			t, err := moneyFlag("total", total)
			if err != nil {
				return err
			}
			r, err := finance.ImpliedRate(v.Float(), t.Float(), installments)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Monthly: %s\nAnnual:  %s\n", pct(r.Monthly), pct(r.Annual))
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "Cash price")
	cmd.Flags().StringVar(&total, "total", "", "Total paid over all installments")
	cmd.Flags().IntVar(&installments, "installments", 12, "Number of installments")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func newScheduleCmd() *cobra.Command {
	var principal string
	var rate float64
	var months int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Amortization table of a loan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := moneyFlag("principal", principal)
			if err != nil {
				return err
			}
			rows, err := finance.Schedule(p.Float(), rate/100, months)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "#\tPayment\tInterest\tAmortization\tBalance\t")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n", r.Period,
					r.Payment.StringFixed(2), r.Interest.StringFixed(2),
					r.Amortization.StringFixed(2), r.Balance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "Amount financed")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Monthly interest rate in percent")
	cmd.Flags().IntVar(&months, "months", 12, "Number of installments")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}
