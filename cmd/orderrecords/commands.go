// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/OrderRecords/cmd/orderrecords/config"
	"github.com/AleutianAI/OrderRecords/pkg/logging"
	"github.com/AleutianAI/OrderRecords/services/orders"
	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document/xlsx"
	"github.com/AleutianAI/OrderRecords/services/orders/ledger"
	"github.com/AleutianAI/OrderRecords/services/orders/plan"
)

const serviceName = "orderrecords"

// app holds state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	plain      bool

	cfg    config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "orderrecords",
		Short: "Record order IDs into sprint-organized Excel workbooks",
		Long: `orderrecords appends order IDs to a workbook grouped by sprint window,
and keeps a flat listing and the sprint schedule alongside.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the YAML config (default $"+config.EnvConfigPath+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&a.plain, "plain", false, "plain line output for scripts")

	root.AddCommand(
		newServeCmd(a),
		newStoreCmd(a),
		newScheduleCmd(a),
		newClassifyCmd(a),
		newInitConfigCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	lc, err := cfg.Logging.LoggerConfig(serviceName)
	if err != nil {
		return err
	}
	lc.Output = cmd.ErrOrStderr()
	a.cfg = cfg
	a.logger = logging.New(lc)
	return nil
}

func (a *app) printer(cmd *cobra.Command) *printer {
	return newPrinter(cmd.OutOrStdout(), a.plain)
}

// =============================================================================
// serve
// =============================================================================

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svcCfg, err := a.cfg.ServiceConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				svcCfg.Port = port
			}
			svc, err := orders.New(svcCfg, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := svc.Run(ctx); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override server.port")
	return cmd
}

// =============================================================================
// store
// =============================================================================

func newStoreCmd(a *app) *cobra.Command {
	var req ledger.Request
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Append one order ID to the workbook in a directory",
		Example: `  orderrecords store --dir ./orders --order-id NEW-55-ABC --env prod
  orderrecords store --dir ./orders --order-id TOM-7 --env qa --date 2026-01-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := a.cfg.LedgerConfig()
			if err != nil {
				return err
			}
			svc, err := ledger.New(lc, xlsx.NewStore(a.cfg.StoreOptions()), ledger.WithLogger(a.logger))
			if err != nil {
				return err
			}

			resp, err := svc.StoreOrderRecord(cmd.Context(), req)
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			p.Success(resp.Message)
			p.Field("file", resp.FilePath)
			p.Field("order_id", resp.OrderID)
			p.Field("stored_at", dates.Format(resp.StoredAt))
			p.Field("entries", strconv.Itoa(resp.Entries))
			p.Field("last_window", strconv.Itoa(resp.LastWindow))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.DirectoryPath, "dir", "", "directory holding the workbook (required)")
	cmd.Flags().StringVar(&req.OrderID, "order-id", "", "order ID to record (required)")
	cmd.Flags().StringVar(&req.Environment, "env", "", "environment label (required)")
	cmd.Flags().StringVar(&req.Date, "date", "", "date as yyyy-MM-dd, trimmed (default today)")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("order-id")
	_ = cmd.MarkFlagRequired("env")
	return cmd
}

// =============================================================================
// schedule
// =============================================================================

func newScheduleCmd(a *app) *cobra.Command {
	var (
		rawDate string
		from    int
		through int
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the sprint windows and the window containing a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := a.cfg.Schedule.Calendar()
			if err != nil {
				return err
			}
			d := dates.Of(time.Now())
			if rawDate != "" {
				if d, err = dates.Parse(rawDate); err != nil {
					return fmt.Errorf("--date: %w", err)
				}
			}
			if !cmd.Flags().Changed("from") {
				from = cal.FirstNumber
			}
			if !cmd.Flags().Changed("through") {
				through = cal.RequiredLast(d)
			}
			if through < from {
				return fmt.Errorf("--through %d is before --from %d", through, from)
			}

			p := a.printer(cmd)
			p.Title("Sprint schedule")
			for _, w := range cal.Generate(from, through) {
				p.Row(w.Contains(d), w.Name, dates.Format(w.Start), dates.Format(w.End))
			}
			current := cal.Window(cal.NumberForDate(d))
			p.Muted("")
			p.Field("date", dates.Format(d))
			p.Field("sprint", current.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&rawDate, "date", "", "date as yyyy-MM-dd (default today)")
	cmd.Flags().IntVar(&from, "from", 0, "first window number (default schedule.first_number)")
	cmd.Flags().IntVar(&through, "through", 0, "last window number (default covers the date plus schedule.extra_windows)")
	return cmd
}

// =============================================================================
// classify
// =============================================================================

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <order-id>...",
		Short: "Print the plan label for each order ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer(cmd)
			for _, id := range args {
				p.Row(false, id, plan.Classify(id))
			}
			return nil
		},
	}
}

// =============================================================================
// init-config
// =============================================================================

func newInitConfigCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			a.printer(cmd).Success("wrote " + path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
