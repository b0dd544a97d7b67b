package signal

import (
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/sirupsen/logrus"
)

// SnapshotSource provides consistent copies of the tracked entities.
// *service.EntityStore satisfies it.
type SnapshotSource interface {
	Snapshot() *service.Snapshot
}

// Processor converts store snapshots into observation signals.
type Processor struct {
	source         SnapshotSource
	mapperRegistry *MapperRegistry
}

// NewProcessor creates a processor with the combatant and timer mappers registered.
func NewProcessor(source SnapshotSource) *Processor {
	registry := NewMapperRegistry()
	registry.Register(combatantMapper{})
	registry.Register(timerMapper{})

	return &Processor{
		source:         source,
		mapperRegistry: registry,
	}
}

// GetMapperRegistry returns the mapper registry for this processor.
// This allows registering custom signal mappers.
func (p *Processor) GetMapperRegistry() *MapperRegistry {
	return p.mapperRegistry
}

// Observe takes a fresh snapshot and maps it to signals.
func (p *Processor) Observe() (*service.Snapshot, []Signal) {
	snap := p.source.Snapshot()
	return snap, p.Process(snap)
}

// Process maps an existing snapshot to signals.
func (p *Processor) Process(snap *service.Snapshot) []Signal {
	var signals []Signal
	for _, mapper := range p.mapperRegistry.All() {
		signals = append(signals, mapper.MapToSignals(snap)...)
	}

	logrus.Debugf("processed snapshot at %s into %d signals", snap.At.Format("15:04:05"), len(signals))
	return signals
}
