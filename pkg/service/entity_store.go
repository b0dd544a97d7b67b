package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EntityStore owns every tracked entity. All mutations are serialized by a
// single mutex so that "resolve, then write back on change" stays atomic
// against user-initiated operations. Entity data lives in memory only.
type EntityStore struct {
	mu    sync.Mutex
	clock clock.Clock
	newID func() string

	combatants map[string]*state.Combatant
	cooldowns  map[string]*state.CooldownSubject
	timers     map[string]*state.AdhocTimer

	// creation order per kind
	combatantOrder []string
	cooldownOrder  []string
	timerOrder     []string
}

type EntityStoreConfig struct {
	// IDGenerator overrides uuid generation, mostly for tests
	IDGenerator func() string
}

// NewEntityStore creates an empty store reading time from clk
func NewEntityStore(clk clock.Clock, cfg EntityStoreConfig) *EntityStore {
	newID := cfg.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}

	return &EntityStore{
		clock:      clk,
		newID:      newID,
		combatants: make(map[string]*state.Combatant),
		cooldowns:  make(map[string]*state.CooldownSubject),
		timers:     make(map[string]*state.AdhocTimer),
	}
}

// Now reads the store's clock
func (s *EntityStore) Now() time.Time {
	return s.clock.Now()
}

// Snapshot is a deep copy of the store at one instant
type Snapshot struct {
	At         time.Time
	Combatants []*state.Combatant
	Cooldowns  []*state.CooldownSubject
	Timers     []*state.AdhocTimer
}

// Faction returns the combatants of one faction in creation order
func (s *Snapshot) Faction(f state.Faction) []*state.Combatant {
	var out []*state.Combatant
	for _, c := range s.Combatants {
		if c.Faction == f {
			out = append(out, c)
		}
	}
	return out
}

// Change describes one status write performed by a recomputation pass
type Change struct {
	Kind state.Kind
	ID   string
	Name string
	From string
	To   string
}

// CombatantPatch carries optional field updates
type CombatantPatch struct {
	Name        *string
	Faction     *state.Faction
	ExternalRef *string
	Notes       *string
}

// CooldownPatch carries optional field updates
type CooldownPatch struct {
	Name        *string
	ExternalRef *string
	Notes       *string
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return name, nil
}

// AddCombatant starts tracking a new combatant in the OPEN state
func (s *EntityStore) AddCombatant(name string, faction state.Faction, externalRef, notes string) (*state.Combatant, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if _, ok := state.ParseFaction(string(faction)); !ok {
		return nil, fmt.Errorf("%w: unknown faction %q", ErrInvalidInput, faction)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findCombatantLocked(name, faction) != nil {
		return nil, fmt.Errorf("%w: %s is already tracked as %s", ErrInvalidInput, name, faction)
	}

	c := &state.Combatant{
		ID:          s.newID(),
		Name:        name,
		Faction:     faction,
		ExternalRef: strings.TrimSpace(externalRef),
		Notes:       notes,
		Status:      state.StatusOpen,
		CreatedAt:   s.clock.Now(),
		Alerted:     state.AlertSet{},
	}
	s.combatants[c.ID] = c
	s.combatantOrder = append(s.combatantOrder, c.ID)

	logrus.Infof("added combatant %s (%s) id=%s", c.Name, c.Faction, c.ID)
	return c.Clone(), nil
}

// AddCooldown starts tracking a new skill cooldown subject in the OPEN state
func (s *EntityStore) AddCooldown(name, externalRef, notes string) (*state.CooldownSubject, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cs := &state.CooldownSubject{
		ID:          s.newID(),
		Name:        name,
		ExternalRef: strings.TrimSpace(externalRef),
		Notes:       notes,
		Status:      state.CooldownOpen,
		CreatedAt:   s.clock.Now(),
	}
	s.cooldowns[cs.ID] = cs
	s.cooldownOrder = append(s.cooldownOrder, cs.ID)

	logrus.Infof("added cooldown subject %s id=%s", cs.Name, cs.ID)
	return cs.Clone(), nil
}

// AddTimer creates a stopped ad-hoc timer
func (s *EntityStore) AddTimer(name, externalRef string) (*state.AdhocTimer, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &state.AdhocTimer{
		ID:          s.newID(),
		Name:        name,
		ExternalRef: strings.TrimSpace(externalRef),
		Status:      state.TimerStopped,
		CreatedAt:   s.clock.Now(),
		Alerted:     state.AlertSet{},
	}
	s.timers[t.ID] = t
	s.timerOrder = append(s.timerOrder, t.ID)

	logrus.Infof("added timer %s id=%s", t.Name, t.ID)
	return t.Clone(), nil
}

// GetCombatant returns a copy of the combatant with id
func (s *EntityStore) GetCombatant(id string) (*state.Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.combatants[id]
	if !ok {
		return nil, notFound(id)
	}
	return c.Clone(), nil
}

// GetCooldown returns a copy of the cooldown subject with id
func (s *EntityStore) GetCooldown(id string) (*state.CooldownSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.cooldowns[id]
	if !ok {
		return nil, notFound(id)
	}
	return cs.Clone(), nil
}

// GetTimer returns a copy of the timer with id
func (s *EntityStore) GetTimer(id string) (*state.AdhocTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return nil, notFound(id)
	}
	return t.Clone(), nil
}

// FindCombatant looks a combatant up by name, case-insensitively.
// An empty faction searches both sides.
func (s *EntityStore) FindCombatant(name string, faction state.Faction) (*state.Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCombatantLocked(name, faction)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(name))
	}
	return c.Clone(), nil
}

func (s *EntityStore) findCombatantLocked(name string, faction state.Faction) *state.Combatant {
	name = strings.TrimSpace(name)
	for _, id := range s.combatantOrder {
		c := s.combatants[id]
		if faction != "" && c.Faction != faction {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// combatantNameTakenLocked reports whether another combatant in faction already uses name
func (s *EntityStore) combatantNameTakenLocked(name string, faction state.Faction, exceptID string) bool {
	for _, id := range s.combatantOrder {
		c := s.combatants[id]
		if id != exceptID && c.Faction == faction && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// FindCooldown looks a cooldown subject up by name, case-insensitively
func (s *EntityStore) FindCooldown(name string) (*state.CooldownSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	for _, id := range s.cooldownOrder {
		if cs := s.cooldowns[id]; strings.EqualFold(cs.Name, name) {
			return cs.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FindTimer looks a timer up by name, case-insensitively
func (s *EntityStore) FindTimer(name string) (*state.AdhocTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	for _, id := range s.timerOrder {
		if t := s.timers[id]; strings.EqualFold(t.Name, name) {
			return t.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ListCombatants returns copies of every combatant in creation order
func (s *EntityStore) ListCombatants() []*state.Combatant {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*state.Combatant, 0, len(s.combatantOrder))
	for _, id := range s.combatantOrder {
		out = append(out, s.combatants[id].Clone())
	}
	return out
}

// Snapshot deep-copies the whole store
func (s *EntityStore) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		At:         s.clock.Now(),
		Combatants: make([]*state.Combatant, 0, len(s.combatantOrder)),
		Cooldowns:  make([]*state.CooldownSubject, 0, len(s.cooldownOrder)),
		Timers:     make([]*state.AdhocTimer, 0, len(s.timerOrder)),
	}
	for _, id := range s.combatantOrder {
		snap.Combatants = append(snap.Combatants, s.combatants[id].Clone())
	}
	for _, id := range s.cooldownOrder {
		snap.Cooldowns = append(snap.Cooldowns, s.cooldowns[id].Clone())
	}
	for _, id := range s.timerOrder {
		snap.Timers = append(snap.Timers, s.timers[id].Clone())
	}
	return snap
}

// UpdateCombatant applies the non-nil fields of patch
func (s *EntityStore) UpdateCombatant(id string, patch CombatantPatch) (*state.Combatant, error) {
	var name string
	if patch.Name != nil {
		n, err := cleanName(*patch.Name)
		if err != nil {
			return nil, err
		}
		name = n
	}
	if patch.Faction != nil {
		if _, ok := state.ParseFaction(string(*patch.Faction)); !ok {
			return nil, fmt.Errorf("%w: unknown faction %q", ErrInvalidInput, *patch.Faction)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.combatants[id]
	if !ok {
		return nil, notFound(id)
	}

	newName, newFaction := c.Name, c.Faction
	if patch.Name != nil {
		newName = name
	}
	if patch.Faction != nil {
		newFaction = *patch.Faction
	}
	if s.combatantNameTakenLocked(newName, newFaction, id) {
		return nil, fmt.Errorf("%w: %s is already tracked as %s", ErrInvalidInput, newName, newFaction)
	}

	c.Name, c.Faction = newName, newFaction
	if patch.ExternalRef != nil {
		c.ExternalRef = strings.TrimSpace(*patch.ExternalRef)
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}

	logrus.Infof("updated combatant %s id=%s", c.Name, c.ID)
	return c.Clone(), nil
}

// UpdateCooldown applies the non-nil fields of patch
func (s *EntityStore) UpdateCooldown(id string, patch CooldownPatch) (*state.CooldownSubject, error) {
	var name string
	if patch.Name != nil {
		n, err := cleanName(*patch.Name)
		if err != nil {
			return nil, err
		}
		name = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.cooldowns[id]
	if !ok {
		return nil, notFound(id)
	}

	if patch.Name != nil {
		cs.Name = name
	}
	if patch.ExternalRef != nil {
		cs.ExternalRef = strings.TrimSpace(*patch.ExternalRef)
	}
	if patch.Notes != nil {
		cs.Notes = *patch.Notes
	}

	logrus.Infof("updated cooldown subject %s id=%s", cs.Name, cs.ID)
	return cs.Clone(), nil
}

// Delete removes the entity with id, whatever its kind
func (s *EntityStore) Delete(id string) (state.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.combatants[id] != nil:
		delete(s.combatants, id)
		s.combatantOrder = removeID(s.combatantOrder, id)
		logrus.Infof("deleted combatant id=%s", id)
		return state.KindCombatant, nil
	case s.cooldowns[id] != nil:
		delete(s.cooldowns, id)
		s.cooldownOrder = removeID(s.cooldownOrder, id)
		logrus.Infof("deleted cooldown subject id=%s", id)
		return state.KindCooldown, nil
	case s.timers[id] != nil:
		delete(s.timers, id)
		s.timerOrder = removeID(s.timerOrder, id)
		logrus.Infof("deleted timer id=%s", id)
		return state.KindTimer, nil
	}

	return "", notFound(id)
}

// RecordShot sets the combatant's trigger time to now and opens a fresh protection window
func (s *EntityStore) RecordShot(id string) (*state.Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.combatants[id]
	if !ok {
		return nil, notFound(id)
	}

	state.RecordShot(c, s.clock.Now())
	logrus.Infof("recorded shot on %s id=%s", c.Name, c.ID)
	return c.Clone(), nil
}

// RecordSkillUse sets the subject's trigger time to now and closes the skill for 24h
func (s *EntityStore) RecordSkillUse(id string) (*state.CooldownSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.cooldowns[id]
	if !ok {
		return nil, notFound(id)
	}

	state.RecordSkillUse(cs, s.clock.Now())
	logrus.Infof("recorded skill use by %s id=%s", cs.Name, cs.ID)
	return cs.Clone(), nil
}

// RecordTrigger records the qualifying event for id: a shot for combatants,
// a skill use for cooldown subjects.
func (s *EntityStore) RecordTrigger(id string) (state.Kind, error) {
	if _, err := s.RecordShot(id); err == nil {
		return state.KindCombatant, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if _, err := s.RecordSkillUse(id); err == nil {
		return state.KindCooldown, nil
	} else if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	if s.hasTimer(id) {
		return "", fmt.Errorf("%w: timers are started with a duration", ErrInvalidInput)
	}
	return "", notFound(id)
}

func (s *EntityStore) hasTimer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// ForceState overrides the stored status and clears the trigger time.
// This is the only way besides a fresh trigger to bring a combatant back from DEAD.
func (s *EntityStore) ForceState(id, status string) (state.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.combatants[id]; ok {
		st, valid := state.ParseProtectionStatus(status)
		if !valid {
			return "", fmt.Errorf("%w: unknown combatant status %q", ErrInvalidInput, status)
		}
		state.ForceCombatantState(c, st)
		logrus.Infof("forced combatant %s id=%s to %s", c.Name, c.ID, st)
		return state.KindCombatant, nil
	}

	if cs, ok := s.cooldowns[id]; ok {
		st, valid := state.ParseCooldownStatus(status)
		if !valid {
			return "", fmt.Errorf("%w: unknown cooldown status %q", ErrInvalidInput, status)
		}
		state.ForceCooldownState(cs, st)
		logrus.Infof("forced cooldown subject %s id=%s to %s", cs.Name, cs.ID, st)
		return state.KindCooldown, nil
	}

	if _, ok := s.timers[id]; ok {
		return "", fmt.Errorf("%w: timers are started or stopped, not forced", ErrInvalidInput)
	}

	return "", notFound(id)
}

// EditTrigger corrects the trigger time of a combatant or cooldown subject.
// A nil trigger clears it.
func (s *EntityStore) EditTrigger(id string, trigger *time.Time) (state.Kind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()

	if c, ok := s.combatants[id]; ok {
		state.EditCombatantTrigger(c, trigger, now)
		logrus.Infof("edited shot time of %s id=%s to %v", c.Name, c.ID, c.TriggerTime)
		return state.KindCombatant, nil
	}

	if cs, ok := s.cooldowns[id]; ok {
		state.EditCooldownTrigger(cs, trigger, now)
		logrus.Infof("edited skill time of %s id=%s to %v", cs.Name, cs.ID, cs.TriggerTime)
		return state.KindCooldown, nil
	}

	if _, ok := s.timers[id]; ok {
		return "", fmt.Errorf("%w: timers have no trigger time", ErrInvalidInput)
	}

	return "", notFound(id)
}

// StartTimer arms the timer for d. A non-positive d is rejected without mutation.
func (s *EntityStore) StartTimer(id string, d time.Duration) (*state.AdhocTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return nil, notFound(id)
	}

	if err := state.StartTimer(t, d, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	logrus.Infof("started timer %s id=%s for %v", t.Name, t.ID, d)
	return t.Clone(), nil
}

// StopTimer disarms the timer. Stopping a stopped timer is a no-op.
func (s *EntityStore) StopTimer(id string) (*state.AdhocTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return nil, notFound(id)
	}

	state.StopTimer(t)
	logrus.Infof("stopped timer %s id=%s", t.Name, t.ID)
	return t.Clone(), nil
}

// Recompute runs the pure resolvers over every entity and writes back only
// the statuses that changed. Running it twice with the same now writes nothing
// the second time.
func (s *EntityStore) Recompute(now time.Time) []Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change

	for _, id := range s.combatantOrder {
		c := s.combatants[id]
		from := c.Status
		if state.RefreshCombatant(c, now) {
			changes = append(changes, Change{Kind: state.KindCombatant, ID: id, Name: c.Name, From: string(from), To: string(c.Status)})
		}
	}

	for _, id := range s.cooldownOrder {
		cs := s.cooldowns[id]
		from := cs.Status
		if state.RefreshCooldown(cs, now) {
			changes = append(changes, Change{Kind: state.KindCooldown, ID: id, Name: cs.Name, From: string(from), To: string(cs.Status)})
		}
	}

	for _, id := range s.timerOrder {
		t := s.timers[id]
		from := t.Status
		if state.RefreshTimer(t, now) {
			changes = append(changes, Change{Kind: state.KindTimer, ID: id, Name: t.Name, From: string(from), To: string(t.Status)})
		}
	}

	if len(changes) > 0 {
		logrus.Debugf("recompute wrote %d status changes", len(changes))
	}
	return changes
}

// ClaimAlert re-checks that alert is still due for the entity and, if so,
// records it as fired and performs its state transition. The check and the
// write happen under one lock so an alert can be claimed at most once per crossing.
func (s *EntityStore) ClaimAlert(id string, alert state.AlertKind, now time.Time, width time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.combatants[id]; ok {
		if !state.CombatantAlertDue(c, alert, now, width) {
			return false, nil
		}
		state.ApplyCombatantAlert(c, alert)
		return true, nil
	}

	if t, ok := s.timers[id]; ok {
		if !state.TimerAlertDue(t, alert, now, width) {
			return false, nil
		}
		state.ApplyTimerAlert(t, alert)
		return true, nil
	}

	if _, ok := s.cooldowns[id]; ok {
		return false, nil
	}

	return false, notFound(id)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
