// Package loom provides the data plane of an Entity-Component-System (ECS)
// runtime: entities identified by integer IDs, typed columnar component
// storage addressed by entity ID, and a change-event stream that drives
// reactive queries and safe cross-goroutine parallelism over shared memory.
//
// # Overview
//
// loom is designed for simulation and game hosts that drive the engine
// themselves by calling Executor.Execute and World.NextSync; the package performs
// no I/O and owns no scheduler loop.
//
//   - Id Pool: thread-safe allocator of entity IDs from a fixed-capacity bitset.
//   - Entity Table: per-entity alive flag, 7-bit generation, component mask.
//   - Event Ring: lock-free ring of typed change events.
//   - Columns: fixed-capacity typed component storage (numeric, bool,
//     string, binary, fixed tuple, variable array, bounded buffer, enum,
//     entity ref).
//   - Query Engine: compiled filter bitmasks with per-reader sparse-set
//     caches and added/removed/changed deltas.
//   - Executor & History: drives main-thread and worker-thread systems and
//     reclaims entity IDs once every registered system has observed a
//     removal.
//   - Worker Plane: goroutines started per dispatch (Context.SetupWorker)
//     that share the Id Pool, Entity Table, Event Ring and Columns by
//     memory, with thread-index / thread-count partitioning.
//
// # Quick Start
//
//	schema, _ := loom.NewSchema("Position", []loom.FieldDef{
//	    loom.NumberField("X", loom.BTypeF32),
//	    loom.NumberField("Y", loom.BTypeF32),
//	})
//
//	world, err := loom.NewWorld(loom.Options{MaxEntities: 10_000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer world.Dispose()
//
//	pos, _ := world.RegisterColumn(schema)
//	ctx := world.GetContext("main")
//	id, _ := ctx.CreateEntity()
//	_ = ctx.AddComponent(id, pos)
//	_ = pos.Patch(id, map[string]interface{}{"X": float32(10), "Y": float32(20)})
//
// # Concurrency
//
// The Id Pool, Entity Table, Event Ring and Columns are shared Go memory:
// goroutines dispatched by the Worker Plane read and write them without
// locks, using atomic operations throughout. Executor.Execute runs its
// systems in order and does not advance any QueryInstance; query deltas
// move only at World.NextSync, so creations, removals or changes made by
// one system in a batch do not show in its siblings' query results until
// the next NextSync.
//
// Copyright (c) 2026 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package loom

// Version of the loom ECS runtime.
const Version = "v0.1.0-dev"
