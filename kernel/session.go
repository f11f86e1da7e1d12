// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/timer"
	"github.com/emer/spikegen/custom"
	"github.com/emer/spikegen/group"
	"github.com/emer/spikegen/neuron"
	"github.com/emer/spikegen/record"
	"github.com/emer/spikegen/rng"
)

// groupState tracks where a neuron group is within the current step
type groupState struct {
	State States

	// a neuron update has run in the current step
	updated bool

	// spike queue / spike event queue rotated after the update
	rotated, evRotated bool
}

// Session drives a set of groups through the kernels of one backend,
// enforcing the order of calls within each step:
// update, then rotation of the spike queues, then previous spike times.
// Recording may happen any time after the first update.
// Calls out of order panic with *StateError.
type Session struct {

	// name of the session, used in reports
	Nm string

	// kernels of the backend
	Kern Kernels

	// host-side random number streams, scalar and per batch element
	Rand *rng.Streams

	// simulation time
	Time Time

	// number of spike queue slots for new neuron groups, >= 2
	NSlots int `def:"2"`

	// neuron groups, in order added
	Neurons []*group.Neuron

	// synapse groups, in order added
	Synapses []*group.Synapse

	// timers for each entry point
	FunTimes map[string]*timer.Time `view:"-"`

	states    []groupState
	seeded    bool
	finalized bool
}

// NewSession returns a new session running on kernels kn
func NewSession(name string, kn Kernels) *Session {
	ss := &Session{Nm: name, Kern: kn, Rand: rng.New(), NSlots: 2}
	ss.Time.Defaults()
	ss.FunTimes = make(map[string]*timer.Time)
	return ss
}

// AddNeurons adds a new neuron group with nNeurons neurons and nBatch
// batch elements, of the model of prm.  The group is Uninitialized until
// the next Seed.
func (ss *Session) AddNeurons(name string, prm neuron.Params, nNeurons, nBatch int) *group.Neuron {
	ss.checkLive("AddNeurons", name)
	ng := group.NewNeuron(ss.Kern.ImportSuffix(), name, len(ss.Neurons), prm, nNeurons, nBatch, ss.NSlots)
	ss.Neurons = append(ss.Neurons, ng)
	ss.states = append(ss.states, groupState{})
	return ng
}

// AddSynapses adds a new dense synapse group with given variables
func (ss *Session) AddSynapses(name string, varNames []string, nPre, nPost, nBatch int) *group.Synapse {
	ss.checkLive("AddSynapses", name)
	sg := group.NewSynapse(ss.Kern.ImportSuffix(), name, varNames, nPre, nPost, nBatch)
	ss.Synapses = append(ss.Synapses, sg)
	return sg
}

// BatchSize returns the largest batch size of all neuron groups, at least 1
func (ss *Session) BatchSize() int {
	bs := 1
	for _, ng := range ss.Neurons {
		if ng.NBatch > bs {
			bs = ng.NBatch
		}
	}
	return bs
}

// Seed initializes all random number streams from seed, and all groups
// to their initial state, and resets the time
func (ss *Session) Seed(seed uint32) {
	ss.checkLive("Seed", "")
	ss.Rand.InitBatch(seed, ss.BatchSize())
	for gi, ng := range ss.Neurons {
		ng.Init()
		ng.Seed(seed)
		ss.states[gi] = groupState{State: Seeded}
	}
	ss.Time.Reset()
	ss.seeded = true
}

func (ss *Session) checkLive(op, name string) {
	if ss.finalized {
		panic(&StateError{Op: op, Group: name, State: Finalized, Reason: "session is finalized"})
	}
}

// state returns the state of ng, which must belong to this session
func (ss *Session) state(op string, ng *group.Neuron) *groupState {
	if ng == nil {
		group.Invalid(op, "", "nil neuron group")
	}
	if ng.Index < 0 || ng.Index >= len(ss.Neurons) || ss.Neurons[ng.Index] != ng {
		group.Invalid(op, ng.Name, "group does not belong to session %q", ss.Nm)
	}
	ss.checkLive(op, ng.Name)
	gs := &ss.states[ng.Index]
	if gs.State == Uninitialized {
		panic(&StateError{Op: op, Group: ng.Name, State: gs.State, Reason: "session must be seeded"})
	}
	return gs
}

func stateErr(op string, ng *group.Neuron, gs *groupState, reason string) {
	panic(&StateError{Op: op, Group: ng.Name, State: gs.State, Reason: reason})
}

// State returns the state of neuron group ng
func (ss *Session) State(ng *group.Neuron) States {
	if ss.finalized {
		return Finalized
	}
	return ss.states[ng.Index].State
}

// Update advances neuron group ng by one step of Time.Dt, dispatching on
// its model.  The spike queues must have been rotated since the last update.
func (ss *Session) Update(ng *group.Neuron) {
	op := "Update"
	gs := ss.state(op, ng)
	if gs.updated && !(gs.rotated && (gs.evRotated || !ng.HasEvents())) {
		stateErr(op, ng, gs, "spike queues must be rotated since the last update")
	}
	dt := ss.Time.Dt
	nn, nb := ng.NNeurons, ng.NBatch
	kn := ss.Kern
	var fun string
	switch mod := ng.Params.Model(); mod {
	case neuron.LIFModel:
		fun = "UpdateLIFNeurons"
		ss.FunTimerStart(fun)
		kn.UpdateLIFNeurons(dt, ng, nn, nb)
	case neuron.PoissonModel:
		fun = "UpdatePoissonNeurons"
		ss.FunTimerStart(fun)
		kn.UpdatePoissonNeurons(dt, ng, nn, nb)
	case neuron.SpikeSourceArrayModel:
		fun = "UpdateSpikeSourceArrayNeurons"
		ss.FunTimerStart(fun)
		kn.UpdateSpikeSourceArrayNeurons(ss.Time.Time, ng, nn, nb)
	case neuron.RulkovMapModel:
		fun = "UpdateRulkovMapNeurons"
		ss.FunTimerStart(fun)
		kn.UpdateRulkovMapNeurons(dt, ng, nn, nb)
	case neuron.IzhikevichModel:
		fun = "UpdateIzhikevichNeurons"
		ss.FunTimerStart(fun)
		kn.UpdateIzhikevichNeurons(dt, ng, nn, nb)
	case neuron.IzhikevichVariableModel:
		fun = "UpdateIzhikevichVariableNeurons"
		ss.FunTimerStart(fun)
		kn.UpdateIzhikevichVariableNeurons(dt, ng, nn, nb)
	case neuron.TraubMilesModel:
		fun = "UpdateTraubMilesNeurons"
		ss.FunTimerStart(fun)
		kn.UpdateTraubMilesNeurons(dt, ng, nn, nb)
	case neuron.CustomModel:
		cn, ok := ng.Params.(custom.Neuron)
		if !ok {
			group.Invalid(op, ng.Name, "custom model parameters of type %T", ng.Params)
		}
		fun = "UpdateCustomNeuron"
		ss.FunTimerStart(fun)
		kn.UpdateCustomNeuron(ng, cn, dt, nn, nb)
	default:
		group.Invalid(op, ng.Name, "unknown model %v", mod)
	}
	ss.FunTimerStop(fun)
	gs.updated = true
	gs.rotated = false
	gs.evRotated = false
	gs.State = Updated
}

// InjectCurrent adds the current of src to the input of the next update of ng
func (ss *Session) InjectCurrent(ng *group.Neuron, src custom.CurrentSource) {
	op := "InjectCurrent"
	ss.state(op, ng)
	fun := "UpdateCustomCurrentSource"
	ss.FunTimerStart(fun)
	ss.Kern.UpdateCustomCurrentSource(ng, src, ss.Time.Dt, ng.NNeurons, ng.NBatch)
	ss.FunTimerStop(fun)
}

// RotateSpikeQueue rotates the spike queue of ng, once per update
func (ss *Session) RotateSpikeQueue(ng *group.Neuron) {
	op := "RotateSpikeQueue"
	gs := ss.state(op, ng)
	if !gs.updated || gs.rotated {
		stateErr(op, ng, gs, "exactly one rotation per update")
	}
	fun := "UpdateNeuronSpikeQueue"
	ss.FunTimerStart(fun)
	ss.Kern.UpdateNeuronSpikeQueue(ng, ng.NBatch)
	ss.FunTimerStop(fun)
	gs.rotated = true
	gs.State = QueueRotated
}

// RotateSpikeEventQueue rotates the spike event queue of ng, once per update
func (ss *Session) RotateSpikeEventQueue(ng *group.Neuron) {
	op := "RotateSpikeEventQueue"
	gs := ss.state(op, ng)
	if !gs.updated || gs.evRotated {
		stateErr(op, ng, gs, "exactly one rotation per update")
	}
	fun := "UpdateNeuronSpikeEventQueue"
	ss.FunTimerStart(fun)
	ss.Kern.UpdateNeuronSpikeEventQueue(ng, ng.NBatch)
	ss.FunTimerStop(fun)
	gs.evRotated = true
}

// UpdatePrevSpikeTime stamps the current time on the neurons of ng that
// spiked in the last update.  The spike queue must have been rotated.
func (ss *Session) UpdatePrevSpikeTime(ng *group.Neuron) {
	op := "UpdatePrevSpikeTime"
	gs := ss.state(op, ng)
	if !gs.rotated {
		stateErr(op, ng, gs, "spike queue must be rotated after the update")
	}
	ss.FunTimerStart(op)
	ss.Kern.UpdatePrevSpikeTime(ss.Time.Time, ng, ng.NBatch)
	ss.FunTimerStop(op)
}

// UpdatePrevSpikeEventTime is UpdatePrevSpikeTime for spike events
func (ss *Session) UpdatePrevSpikeEventTime(ng *group.Neuron) {
	op := "UpdatePrevSpikeEventTime"
	gs := ss.state(op, ng)
	if !gs.evRotated {
		stateErr(op, ng, gs, "spike event queue must be rotated after the update")
	}
	ss.FunTimerStart(op)
	ss.Kern.UpdatePrevSpikeEventTime(ss.Time.Time, ng, ng.NBatch)
	ss.FunTimerStop(op)
}

func (ss *Session) checkRecord(op string, ng *group.Neuron) *groupState {
	gs := ss.state(op, ng)
	if !gs.updated {
		stateErr(op, ng, gs, "nothing to record before the first update")
	}
	return gs
}

// RecordVar records state variable varID of all neurons of ng at timestep index tIdx
func (ss *Session) RecordVar(ng *group.Neuron, varID int, buf *record.Buffer, tIdx int) {
	op := "RecordVar"
	gs := ss.checkRecord(op, ng)
	fun := "RecordNeuronVariable"
	ss.FunTimerStart(fun)
	ss.Kern.RecordNeuronVariable(ng, varID, buf, ng.NNeurons, tIdx, ng.NBatch)
	ss.FunTimerStop(fun)
	gs.State = Recorded
}

// RecordSpikeCount records the spike count of the last update of ng at timestep index tIdx
func (ss *Session) RecordSpikeCount(ng *group.Neuron, buf *record.CountBuffer, tIdx int) {
	op := "RecordSpikeCount"
	gs := ss.checkRecord(op, ng)
	fun := "RecordNeuronSpikeCount"
	ss.FunTimerStart(fun)
	ss.Kern.RecordNeuronSpikeCount(ng, buf, ng.NNeurons, tIdx, ng.NBatch)
	ss.FunTimerStop(fun)
	gs.State = Recorded
}

// RecordSynVar records synaptic variable varID of all synapses of sg at timestep index tIdx
func (ss *Session) RecordSynVar(sg *group.Synapse, varID int, buf *record.Buffer, tIdx int) {
	op := "RecordSynVar"
	ss.checkLive(op, "")
	if !ss.seeded {
		panic(&StateError{Op: op, State: Uninitialized, Reason: "session must be seeded"})
	}
	fun := "RecordSynapticVariable"
	ss.FunTimerStart(fun)
	ss.Kern.RecordSynapticVariable(sg, varID, buf, sg.NPre, sg.NPost, tIdx, sg.NBatch)
	ss.FunTimerStop(fun)
}

// Step runs one full step on the given neuron groups, or all of them if
// none are given: updates, spike queue rotations and previous spike times,
// then increments Time
func (ss *Session) Step(ngs ...*group.Neuron) {
	if len(ngs) == 0 {
		ngs = ss.Neurons
	}
	for _, ng := range ngs {
		ss.Update(ng)
	}
	for _, ng := range ngs {
		ss.RotateSpikeQueue(ng)
		ss.UpdatePrevSpikeTime(ng)
		if ng.HasEvents() {
			ss.RotateSpikeEventQueue(ng)
			ss.UpdatePrevSpikeEventTime(ng)
		}
	}
	ss.Time.StepInc()
}

// Finalize closes the kernels.  No further calls are allowed.
func (ss *Session) Finalize() {
	ss.checkLive("Finalize", "")
	ss.Kern.Close()
	for gi := range ss.states {
		ss.states[gi].State = Finalized
	}
	ss.finalized = true
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (ss *Session) FunTimerStart(fun string) {
	ft, ok := ss.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		ss.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (ss *Session) FunTimerStop(fun string) {
	ft := ss.FunTimes[fun]
	ft.Stop()
}

// TimerReport reports the amount of time spent in each entry point
func (ss *Session) TimerReport() {
	fmt.Printf("TimerReport: %v, Backend: %v\n", ss.Nm, ss.Kern.ImportSuffix())
	fmt.Printf("\t%31s \t%7s\t%7s\n", "Function Name", "Secs", "Pct")
	fnms := make([]string, 0, len(ss.FunTimes))
	for k := range ss.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	pcts := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = ss.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%31s \t%7.3f\t%7.1f\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\t%31s \t%7.3f\n", "Total", tot)
}

// SizeReport returns a string reporting the size of each group
func (ss *Session) SizeReport() string {
	var b strings.Builder
	neur := 0
	neurMem := 0
	for _, ng := range ss.Neurons {
		nn := ng.NNeurons * ng.NBatch
		nmem := ng.MemBytes()
		neur += nn
		neurMem += nmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t Model: %v\t NeurMem: %v\n", ng.Name, nn, ng.Params.Model(), (datasize.ByteSize)(nmem).HumanReadable())
	}
	syn := 0
	synMem := 0
	for _, sg := range ss.Synapses {
		ns := sg.NPre * sg.NPost * sg.NBatch
		smem := sg.MemBytes()
		syn += ns
		synMem += smem
		fmt.Fprintf(&b, "%14s:\t Syns: %d\t SynMem: %v\n", sg.Name, ns, (datasize.ByteSize)(smem).HumanReadable())
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d \t SynMem: %v\n", ss.Nm, neur, (datasize.ByteSize)(neurMem).HumanReadable(), syn, (datasize.ByteSize)(synMem).HumanReadable())
	return b.String()
}
