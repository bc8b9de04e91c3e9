// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/config"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/expression"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/metrics"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/core"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/querydesc"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/planner/window"
	"github.com/cloudberrydb/cloudberrydb-sub043/pkg/util/logutil"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// FlagConfig is the name of config flag.
	FlagConfig = "config"
	// FlagLogLevel is the name of log-level flag.
	FlagLogLevel = "log-level"

	flagQuery      = "query"
	flagFormat     = "format"
	flagSequential = "sequential"
	flagNoShare    = "no-share"
	flagSegments   = "segments"
	flagMetrics    = "print-metrics"

	formatTree  = "tree"
	formatBrief = "brief"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "explainwindow",
		Short:         "explainwindow plans the window functions of a query and prints the plan.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP(FlagConfig, "c", "", "Set the TOML config file path")
	rootCmd.PersistentFlags().StringP(FlagLogLevel, "L", "", "Set the log level, overrides the config file")
	rootCmd.AddCommand(newPlanCommand(), newConfigCommand())
	return rootCmd
}

func newPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "plan a YAML query description",
		Args:  cobra.NoArgs,
		RunE:  runPlan,
	}
	definePlanFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired(flagQuery)
	return cmd
}

func definePlanFlags(flags *pflag.FlagSet) {
	flags.StringP(flagQuery, "f", "", "YAML query description file")
	flags.String(flagFormat, formatTree, "Output format, tree or brief")
	flags.Bool(flagSequential, false, "Prefer sequential plans over parallel ones")
	flags.Bool(flagNoShare, false, "Plan the common input once per coplan instead of sharing it")
	flags.Int(flagSegments, 0, "Number of segments, overrides the config file")
	flags.Bool(flagMetrics, false, "Print the planner metrics after the plan")
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "print-config",
		Short: "print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			s, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), s)
			return errors.Trace(err)
		},
	}
}

// loadConfig reads the config file named by the flags and starts the
// logger it describes.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.NewConfig()
	if file, _ := flags.GetString(FlagConfig); file != "" {
		if err := cfg.Load(file); err != nil {
			return nil, err
		}
	}
	if err := logutil.InitLogger(cfg.Log.ToLogConfig()); err != nil {
		return nil, errors.Trace(err)
	}
	if level, _ := flags.GetString(FlagLogLevel); level != "" {
		if err := logutil.SetLevel(level); err != nil {
			return nil, err
		}
		cfg.Log.Level = level
	}
	config.StoreGlobalConfig(cfg)
	return cfg, nil
}

func runPlan(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	file, _ := flags.GetString(flagQuery)
	desc, err := querydesc.Load(file)
	if err != nil {
		return err
	}
	winCfg := cfg.Planner.Window
	if err := desc.ApplySettings(&winCfg); err != nil {
		return err
	}
	if flags.Changed(flagSequential) {
		winCfg.SequentialPlans, _ = flags.GetBool(flagSequential)
	}
	if noShare, _ := flags.GetBool(flagNoShare); noShare {
		winCfg.ShareInput = false
	}
	if segs, _ := flags.GetInt(flagSegments); segs > 0 {
		winCfg.NumSegments = segs
	}

	q, err := querydesc.Bind(desc, expression.BuiltinCatalog())
	if err != nil {
		return err
	}
	ctx := logutil.WithKeyValue(context.Background(), "query", file)
	res, err := window.Plan(ctx, q, window.WithConfig(winCfg))
	if err != nil {
		return err
	}
	format, _ := flags.GetString(flagFormat)
	if err := printResult(cmd.OutOrStdout(), res, format); err != nil {
		return err
	}
	if printMetrics, _ := flags.GetBool(flagMetrics); printMetrics {
		return writeMetrics(cmd.OutOrStdout())
	}
	return nil
}

func writeMetrics(w io.Writer) error {
	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)
	families, err := reg.Gather()
	if err != nil {
		return errors.Trace(err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func printResult(w io.Writer, res *window.Result, format string) error {
	switch format {
	case formatBrief:
		fmt.Fprintln(w, core.ToString(res.Plan))
	case formatTree:
		fmt.Fprintf(w, "strategy: %s\n", res.Strategy)
		fmt.Fprintf(w, "locus: %s\n", res.Locus)
		if len(res.PathKeys) > 0 {
			fmt.Fprintf(w, "order: %s\n", res.PathKeys)
		}
		fmt.Fprintf(w, "output: %s\n", expression.TargetListString(res.TargetList))
		fmt.Fprintln(w, strings.Join(core.ExplainText(res.Plan), "\n"))
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	return nil
}
