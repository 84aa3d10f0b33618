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

package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/daviszhen/iejoin/pkg/common"
	"github.com/daviszhen/iejoin/pkg/iedriver"
	"github.com/daviszhen/iejoin/pkg/plan"
	"github.com/daviszhen/iejoin/pkg/prune"
	"github.com/daviszhen/iejoin/pkg/source"
	"github.com/daviszhen/iejoin/pkg/util"
)

func runJoin(cfg *Config) error {
	left, err := openSource(cfg.Join.Left)
	if err != nil {
		return fmt.Errorf("open left relation: %w", err)
	}
	right, err := openSource(cfg.Join.Right)
	if err != nil {
		return fmt.Errorf("open right relation: %w", err)
	}

	pred1, err := toPredicate(cfg.Join.Pred1)
	if err != nil {
		return fmt.Errorf("pred1: %w", err)
	}
	pred2, err := toPredicate(cfg.Join.Pred2)
	if err != nil {
		return fmt.Errorf("pred2: %w", err)
	}

	driverCfg, err := toDriverConfig(cfg.Driver)
	if err != nil {
		return fmt.Errorf("driver config: %w", err)
	}

	if cfg.Debug.PrintPlan {
		printPlan(cfg, left, right, pred1, pred2, driverCfg)
	}

	ctx := context.Background()
	leftBatch, err := left.Scan(ctx, nil)
	if err != nil {
		return fmt.Errorf("scan left relation: %w", err)
	}
	rightBatch, err := right.Scan(ctx, nil)
	if err != nil {
		return fmt.Errorf("scan right relation: %w", err)
	}

	pairs, err := iedriver.Join(ctx, leftBatch, rightBatch, pred1, pred2, driverCfg)
	if err != nil {
		return fmt.Errorf("join: %w", err)
	}

	if cfg.Debug.PrintResult {
		util.Info("join complete", zap.Int("pair_count", len(pairs)))
	}

	return writePairs(cfg.Output, pairs)
}

func openSource(rel RelationConfig) (source.DataSource, error) {
	switch rel.Format {
	case "", "csv":
		return source.NewCSV(rel.Path, ',')
	case "parquet":
		return source.NewParquet(rel.Path, 1), nil
	default:
		return nil, fmt.Errorf("unsupported relation format %q", rel.Format)
	}
}

func toPredicate(p PredicateConfig) (common.Predicate, error) {
	op, err := parseOp(p.Op)
	if err != nil {
		return common.Predicate{}, err
	}
	return common.Predicate{Op: op, LeftCol: p.LeftCol, RightCol: p.RightCol}, nil
}

func parseOp(s string) (common.Op, error) {
	switch s {
	case "<":
		return common.OpLt, nil
	case "<=":
		return common.OpLe, nil
	case ">":
		return common.OpGt, nil
	case ">=":
		return common.OpGe, nil
	default:
		return common.OpInvalid, fmt.Errorf("unsupported operator %q: %w", s, common.ErrUnsupportedPredicate)
	}
}

func toDriverConfig(d DriverConfig) (iedriver.Config, error) {
	cfg := iedriver.DefaultConfig()
	if d.BucketSize > 0 {
		cfg.BucketSize = d.BucketSize
	}
	if d.PartitionCountMin > 0 {
		cfg.PartitionCountMin = d.PartitionCountMin
	}
	if d.SampleRatio > 0 {
		cfg.SampleRatio = d.SampleRatio
	}
	cfg.DeterministicOutput = d.DeterministicOutput
	if d.MaxWorkers > 0 {
		cfg.MaxWorkers = d.MaxWorkers
	}
	if d.Seed != 0 {
		cfg.Seed = d.Seed
	}

	switch d.PruneMode {
	case "", "symmetric":
		cfg.PruneMode = prune.Symmetric
	case "directional":
		cfg.PruneMode = prune.Directional
	default:
		return cfg, fmt.Errorf("unsupported prune mode %q", d.PruneMode)
	}

	switch d.Strategy {
	case "", "auto":
		cfg.Strategy = iedriver.Auto
	case "global_sort":
		cfg.Strategy = iedriver.GlobalSort
	case "sample_range":
		cfg.Strategy = iedriver.SampleRange
	default:
		return cfg, fmt.Errorf("unsupported strategy %q", d.Strategy)
	}
	return cfg, nil
}

func printPlan(cfg *Config, left, right source.DataSource, pred1, pred2 common.Predicate, driverCfg iedriver.Config) {
	strategy := plan.StrategyAuto
	switch driverCfg.Strategy {
	case iedriver.GlobalSort:
		strategy = plan.StrategyGlobalSort
	case iedriver.SampleRange:
		strategy = plan.StrategySampleRange
	}
	node := plan.NewIEJoin(
		plan.NewScan(cfg.Join.Left.Path, left.Schema()),
		plan.NewScan(cfg.Join.Right.Path, right.Schema()),
		plan.AndPredicate{
			Ineq1: plan.BinaryExpr{Op: pred1.Op, L: plan.ColumnRef{Column: pred1.LeftCol}, R: plan.ColumnRef{Column: pred1.RightCol}},
			Ineq2: plan.BinaryExpr{Op: pred2.Op, L: plan.ColumnRef{Column: pred2.LeftCol}, R: plan.ColumnRef{Column: pred2.RightCol}},
		},
		strategy,
	)
	fmt.Println(plan.Print(node))
}

func writePairs(out OutputConfig, pairs [][2]common.RowID) error {
	w := os.Stdout
	if out.Path != "" {
		f, err := os.Create(out.Path)
		if err != nil {
			return fmt.Errorf("create %s: %w", out.Path, err)
		}
		defer f.Close()
		return writePairsTo(f, out.NeedHeadLine, pairs)
	}
	return writePairsTo(w, out.NeedHeadLine, pairs)
}

func writePairsTo(f *os.File, needHeadline bool, pairs [][2]common.RowID) error {
	writer := csv.NewWriter(f)
	defer writer.Flush()

	if needHeadline {
		if err := writer.Write([]string{"left_id", "right_id"}); err != nil {
			return err
		}
	}
	for _, p := range pairs {
		record := []string{strconv.FormatInt(p[0], 10), strconv.FormatInt(p[1], 10)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
