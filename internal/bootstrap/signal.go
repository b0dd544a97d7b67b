// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/sirupsen/logrus"
)

// InitSignalProcessor creates a signal processor over the entity store with
// the builtin combatant and timer mappers.
func InitSignalProcessor(source signal.SnapshotSource) *signal.Processor {
	processor := signal.NewProcessor(source)

	logrus.Infof("initialized signal processor with %d signal mappers",
		processor.GetMapperRegistry().Count())

	return processor
}
