// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikegen is the overall repository for the backends that run
generated spiking neuron network code, and the machinery that decides
when generated code can be reused.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* prefs: the per-backend preferences (single threaded CPU, ISPC, CUDA),
their defaults, validation, and the deterministic digest that keys builds.

* hashacc: the ordered hash accumulator behind every digest.

* neuron, chans, custom: the neuron models (LIF, Poisson, spike source
array, Rulkov map, Izhikevich, Traub-Miles) and user-defined models and
current sources.

* group, spikeq, rng, record: neuron and synapse group state, the ring of
spike queue slots, the per-neuron random streams, and recording buffers.

* kernel: the fixed set of entry points every backend implements, and the
Session that drives groups through them in the required order.

* backend: the cpu, ispc and cuda backends, and conform, the conformance
suite that every backend must pass.

* model, dispatch: model descriptions, and backend selection with a
persistent build cache.

* examples: spikerun runs a small network on any backend, and is the
place to start.
*/
package spikegen
