// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	actionBuiltin "github.com/MattchuPichuu/WarDaddy/pkg/action/builtin"
	"github.com/MattchuPichuu/WarDaddy/pkg/pipeline"
	"github.com/sirupsen/logrus"
)

// InitActionExecutor creates and initializes an action executor with actions from pipeline config.
//
// Delivery dependencies travel in deps. Leave a field nil (not a typed nil
// pointer) when that channel is not configured so the action only logs.
func InitActionExecutor(
	pipelineConfig *pipeline.Config,
	deps *actionBuiltin.Dependencies,
) (*action.Executor, *action.Registry, error) {
	actionBuiltin.RegisterActions(deps)

	actionConfigs := pipelineConfig.ActionConfigs()

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, actionConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register actions: %w", err)
	}

	logrus.Infof("registered %d actions", len(actionConfigs))

	executor := action.NewExecutor(registry)
	logrus.Infof("initialized action executor")

	return executor, registry, nil
}
