// Package bridgescan bridges a host query planner to bitmap-heap scans
// over an embedded multi-version storage engine.
//
// The bridge intercepts the planner's candidate access paths for
// engine-backed tables, replaces native bitmap-heap paths with an
// opaque custom scan path, lowers the chosen path into an immutable
// custom plan node, and executes that plan through a bitmap cursor on
// the engine.
//
// # Quick Start
//
//	eng := engine.New()
//	_ = eng.CreateTable(descr)
//
//	b := bridgescan.New(eng)
//	_ = b.RewriteRelationPaths(rel)          // planning hook
//	cs, _ := b.BuildPlan(rel, best, subplans) // plan creation
//
//	scan, _ := b.NewScan(cs, rel.Name)
//	_ = scan.Open(exec.EState{Snapshot: eng.Snapshot()})
//	for {
//	    tuple, ok, err := scan.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    _ = tuple
//	}
//	scan.Close()
//
// Instrumented scans additionally collect per-index counters that
// Explain renders alongside the plan tree.
package bridgescan
