// Package workerenv launches and supervises an external worker process
// with strong kill-on-host-death guarantees.
//
// The supervised worker is a long-running local HTTP service (for example
// a Python inference backend) that must never outlive the host process:
// on Linux the worker receives a parent-death signal, on Windows it is
// placed in a kill-on-close job object, and on every platform a launch
// registry lets the next run clean up anything a crash left behind.
//
// # Basic Usage
//
//	import "github.com/glacierworks/workerenv"
//
//	ctx := context.Background()
//
//	sup := workerenv.NewSupervisor(
//	    workerenv.WithWorkerBinary("/opt/worker/bin/worker"),
//	)
//	if err := sup.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sup.Shutdown()
//
//	if err := sup.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sup.Stop(ctx)
//
//	resp, err := http.Get(sup.WorkerURL() + "/api/queue")
//	// Use the worker's API...
//
// # Bundles
//
// When the worker needs a payload installed first (an interpreter tree,
// plugin packs), configure the zip archives with WithBundleArchives.
// Initialize extracts them once into a content-addressed directory shared
// by all host processes; an unchanged bundle is never re-extracted.
//
// # Environment hygiene
//
// The worker's environment is a sanitized copy of the host's: variables
// that would poison an embedded Python runtime (PYTHONPATH) are stripped,
// and explicit overrides always win over inherited values.
package workerenv
