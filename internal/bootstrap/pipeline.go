// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	"github.com/MattchuPichuu/WarDaddy/pkg/pipeline"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/sirupsen/logrus"
)

// InitPipeline creates the pipeline manager with the rule-to-action mappings
// from config/pipeline.yaml. To change mappings, edit the YAML, not this file.
func InitPipeline(
	processor *signal.Processor,
	ruleEngine *rule.Engine,
	actionExecutor *action.Executor,
	pipelineConfig *pipeline.Config,
	store pipeline.Store,
	opts ...pipeline.ManagerOption,
) *pipeline.Manager {
	p := pipelineConfig.Pipeline()

	logrus.Infof("configured %d rule-to-action mappings: %v", len(p.RoutedRules()), p.RoutedRules())

	manager := pipeline.NewManager(processor, ruleEngine, actionExecutor, p, store, opts...)
	logrus.Infof("initialized pipeline manager")

	return manager
}
