// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/pipeline"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	ruleBuiltin "github.com/MattchuPichuu/WarDaddy/pkg/rule/builtin"
	"github.com/sirupsen/logrus"
)

// InitRuleEngine creates and initializes a rule engine with rules from pipeline config.
//
// alertWindow is the default threshold window width handed to every alert
// rule; a rule may still override it with its own "window" parameter.
func InitRuleEngine(pipelineConfig *pipeline.Config, alertWindow time.Duration) (*rule.Engine, *rule.Registry, error) {
	deps := rule.NewRuleDependencies().WithAlertWindow(alertWindow)
	ruleBuiltin.RegisterBuiltinRules(deps)

	ruleConfigs := pipelineConfig.RuleConfigs()

	registry := rule.NewRegistry()
	if err := rule.RegisterRules(registry, ruleConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register rules: %w", err)
	}

	logrus.Infof("registered %d rules (alert window %v)", len(ruleConfigs), deps.Window())

	engine := rule.NewEngine(registry)
	logrus.Infof("initialized rule engine")

	return engine, registry, nil
}
