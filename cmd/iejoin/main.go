// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command iejoin is the CLI entry point (spec.md §2's cmd/iejoin): a
// cobra root command plus a "run" subcommand, its flags bound through
// viper over an iejoin.toml config, following the teacher's own
// cmd/tester layout.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/iejoin/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRunCmd()
}

var runCfg = &Config{}

var info = "iejoin"
var RootCmd = &cobra.Command{
	Use:          "iejoin",
	Short:        info,
	Long:         info + ": partitioned sort-and-bitset inequality join",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use iejoin --help or -h")
	},
}

var runInfo = "run an IEJoin over two CSV/Parquet relations"
var runCmd = &cobra.Command{
	Use:   "run",
	Short: runInfo,
	Long:  runInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCfg()
		return runJoin(runCfg)
	},
}

func initRunCfg() {
	runCfg.Join.Left.Path = viper.GetString("join.left.path")
	runCfg.Join.Left.Format = viper.GetString("join.left.format")
	runCfg.Join.Right.Path = viper.GetString("join.right.path")
	runCfg.Join.Right.Format = viper.GetString("join.right.format")
	runCfg.Join.Pred1.LeftCol = viper.GetString("join.pred1.leftCol")
	runCfg.Join.Pred1.Op = viper.GetString("join.pred1.op")
	runCfg.Join.Pred1.RightCol = viper.GetString("join.pred1.rightCol")
	runCfg.Join.Pred2.LeftCol = viper.GetString("join.pred2.leftCol")
	runCfg.Join.Pred2.Op = viper.GetString("join.pred2.op")
	runCfg.Join.Pred2.RightCol = viper.GetString("join.pred2.rightCol")

	runCfg.Driver.BucketSize = viper.GetInt("driver.bucketSize")
	runCfg.Driver.PartitionCountMin = viper.GetInt("driver.partitionCountMin")
	runCfg.Driver.SampleRatio = viper.GetFloat64("driver.sampleRatio")
	runCfg.Driver.PruneMode = viper.GetString("driver.pruneMode")
	runCfg.Driver.DeterministicOutput = viper.GetBool("driver.deterministicOutput")
	runCfg.Driver.MaxWorkers = viper.GetInt("driver.maxWorkers")
	runCfg.Driver.Seed = viper.GetInt64("driver.seed")
	runCfg.Driver.Strategy = viper.GetString("driver.strategy")

	runCfg.Output.Path = viper.GetString("output.path")
	runCfg.Output.NeedHeadLine = viper.GetBool("output.needHeadline")

	runCfg.Debug.PrintPlan = viper.GetBool("debug.printPlan")
	runCfg.Debug.PrintResult = viper.GetBool("debug.printResult")
}

func initRunCmd() {
	RootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runCfg.Join.Left.Path, "left_path", "", "left relation file path")
	runCmd.Flags().StringVar(&runCfg.Join.Left.Format, "left_format", "csv", "left relation format: csv, parquet")
	runCmd.Flags().StringVar(&runCfg.Join.Right.Path, "right_path", "", "right relation file path")
	runCmd.Flags().StringVar(&runCfg.Join.Right.Format, "right_format", "csv", "right relation format: csv, parquet")

	runCmd.Flags().StringVar(&runCfg.Join.Pred1.LeftCol, "pred1_left_col", "x", "predicate 1 left column")
	runCmd.Flags().StringVar(&runCfg.Join.Pred1.Op, "pred1_op", "<", "predicate 1 operator: <, <=, >, >=")
	runCmd.Flags().StringVar(&runCfg.Join.Pred1.RightCol, "pred1_right_col", "x", "predicate 1 right column")
	runCmd.Flags().StringVar(&runCfg.Join.Pred2.LeftCol, "pred2_left_col", "y", "predicate 2 left column")
	runCmd.Flags().StringVar(&runCfg.Join.Pred2.Op, "pred2_op", ">", "predicate 2 operator: <, <=, >, >=")
	runCmd.Flags().StringVar(&runCfg.Join.Pred2.RightCol, "pred2_right_col", "y", "predicate 2 right column")

	runCmd.Flags().IntVar(&runCfg.Driver.BucketSize, "bucket_size", 10000, "target partition size")
	runCmd.Flags().IntVar(&runCfg.Driver.PartitionCountMin, "partition_count_min", 2, "minimum partitions per side")
	runCmd.Flags().Float64Var(&runCfg.Driver.SampleRatio, "sample_ratio", 0.10, "sample-range boundary sample ratio")
	runCmd.Flags().StringVar(&runCfg.Driver.PruneMode, "prune_mode", "symmetric", "prune mode: symmetric, directional")
	runCmd.Flags().BoolVar(&runCfg.Driver.DeterministicOutput, "deterministic_output", false, "sort output pairs lexicographically")
	runCmd.Flags().IntVar(&runCfg.Driver.MaxWorkers, "max_workers", 0, "max concurrent partition-pair workers, 0 = GOMAXPROCS")
	runCmd.Flags().Int64Var(&runCfg.Driver.Seed, "seed", 1, "sample-range rng seed")
	runCmd.Flags().StringVar(&runCfg.Driver.Strategy, "strategy", "auto", "partitioning strategy: auto, global_sort, sample_range")

	runCmd.Flags().StringVar(&runCfg.Output.Path, "output_path", "", "result pairs CSV path, empty = stdout")
	runCmd.Flags().BoolVar(&runCfg.Output.NeedHeadLine, "need_headline", true, "emit a header line in the output")

	runCmd.Flags().BoolVar(&runCfg.Debug.PrintPlan, "print_plan", false, "print the logical plan before running")
	runCmd.Flags().BoolVar(&runCfg.Debug.PrintResult, "print_result", false, "log the result pair count")

	for _, bind := range []struct{ key, flag string }{
		{"join.left.path", "left_path"}, {"join.left.format", "left_format"},
		{"join.right.path", "right_path"}, {"join.right.format", "right_format"},
		{"join.pred1.leftCol", "pred1_left_col"}, {"join.pred1.op", "pred1_op"}, {"join.pred1.rightCol", "pred1_right_col"},
		{"join.pred2.leftCol", "pred2_left_col"}, {"join.pred2.op", "pred2_op"}, {"join.pred2.rightCol", "pred2_right_col"},
		{"driver.bucketSize", "bucket_size"}, {"driver.partitionCountMin", "partition_count_min"},
		{"driver.sampleRatio", "sample_ratio"}, {"driver.pruneMode", "prune_mode"},
		{"driver.deterministicOutput", "deterministic_output"}, {"driver.maxWorkers", "max_workers"},
		{"driver.seed", "seed"}, {"driver.strategy", "strategy"},
		{"output.path", "output_path"}, {"output.needHeadline", "need_headline"},
		{"debug.printPlan", "print_plan"}, {"debug.printResult", "print_result"},
	} {
		viper.BindPFlag(bind.key, runCmd.Flags().Lookup(bind.flag))
	}
}

var defCfgFilePaths = []string{".", "etc/iejoin"}
var cfgFileName = "iejoin.toml"

// loadConfig mirrors the teacher's cmd/tester loadConfig: a config
// file is optional here (flags alone can drive a run), so a missing
// file just logs and continues rather than exiting.
func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			viper.SetConfigFile(fpath)
			if err := viper.ReadInConfig(); err != nil {
				util.Error("viper load config file failed", zap.String("fpath", fpath), zap.Error(err))
				continue
			}
			return
		}
	}
	util.Debug("iejoin.toml not found, relying on flags/defaults")
}

func main() {
	logger, _ := zap.NewDevelopment()
	util.SetLogger(logger)

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
