package emu

// trackingCache remembers whether the cache was touched since the last
// CacheChanged event.
type trackingCache struct {
	OperandCache
	dirty bool
}

func (t *trackingCache) Load(addr uint16) (uint16, error) {
	t.dirty = true
	return t.OperandCache.Load(addr)
}

func (t *trackingCache) Store(addr, value uint16) error {
	t.dirty = true
	return t.OperandCache.Store(addr, value)
}

func (t *trackingCache) Invalidate(addr uint16) {
	t.dirty = true
	t.OperandCache.Invalidate(addr)
}

func (t *trackingCache) Reset() {
	t.dirty = true
	t.OperandCache.Reset()
}

// snapshot is the observable machine state before a mutation.
type snapshot struct {
	regs     RegFile
	mar, mbr uint16
	marSet   bool
	mbrSet   bool
	branches uint64
	forceAll bool
}

func (e *Emulator) snapshot() snapshot {
	s := snapshot{regs: *e.regFile}
	s.mar, s.marSet = e.memory.MAR()
	s.mbr, s.mbrSet = e.memory.MBR()
	if e.predictor != nil {
		s.branches = e.predictor.Branches()
	}
	return s
}

// publishChanges publishes one event per piece of state that differs from
// before, in a fixed order.
func (e *Emulator) publishChanges(before snapshot) {
	r := e.regFile
	all := before.forceAll

	for i := range r.GPR {
		if all || r.GPR[i] != before.regs.GPR[i] {
			e.bus.Publish(RegisterChanged{Kind: KindGPR, Index: uint8(i), Value: r.GPR[i]})
		}
	}
	for i := 1; i < len(r.IXR); i++ {
		if all || r.IXR[i] != before.regs.IXR[i] {
			e.bus.Publish(RegisterChanged{Kind: KindIXR, Index: uint8(i), Value: r.IXR[i]})
		}
	}
	for i := range r.FR {
		if all || r.FR[i] != before.regs.FR[i] {
			e.bus.Publish(RegisterChanged{Kind: KindFR, Index: uint8(i), Value: r.FR[i]})
		}
	}

	if all || r.PC != before.regs.PC || r.PCSet != before.regs.PCSet {
		e.bus.Publish(PCChanged{Value: r.PC})
	}
	if all || r.IR != before.regs.IR {
		e.bus.Publish(IRChanged{Value: r.IR})
	}

	mar, marSet := e.memory.MAR()
	if all || mar != before.mar || marSet != before.marSet {
		e.bus.Publish(MARChanged{Value: mar, Set: marSet})
	}
	mbr, mbrSet := e.memory.MBR()
	if all || mbr != before.mbr || mbrSet != before.mbrSet {
		e.bus.Publish(MBRChanged{Value: mbr, Set: mbrSet})
	}

	if all || r.CC != before.regs.CC || r.Carry != before.regs.Carry {
		e.bus.Publish(ConditionCodesChanged{CC: r.CC, Carry: r.Carry})
	}

	if e.predictor != nil && (all || e.predictor.Branches() != before.branches) {
		e.bus.Publish(PredictorStatsChanged{
			Branches: e.predictor.Branches(),
			Correct:  e.predictor.Correct(),
			Accuracy: e.predictor.Accuracy(),
		})
	}

	if all || e.cache.dirty {
		e.cache.dirty = false
		e.bus.Publish(CacheChanged{Summary: e.cache.Summary()})
	}
}
