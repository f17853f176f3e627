// Package humane renders human-facing diagnostic messages and turns fatal
// failures into crash reports.
//
// An [Emitter] routes each message by [Severity]: WARNING, INFO, DEBUG, and
// NOTICE render as color-coded "[SEVERITY] text" lines on the sink, DEBUG
// only when debug output is enabled. FATAL additionally captures a
// [go.jacobcolvin.com/humane/report.Report], persists it as a plain-text
// artifact, and prints an instruction telling the user where to file the
// bug. The emitter never terminates the process; hosts inspect the
// [EmitResult] and exit with [FatalExitCode] if they want to.
//
// Typical usage creates a [Config], registers flags, then builds an emitter
// at startup:
//
//	cfg := humane.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	e, err := humane.New(cfg)
//
//	e.Info("config loaded")
//	e.Warning("cache is stale")
//
//	res, err := e.Fatal("index out of range", report.Callers(0)...)
//	if res.Outcome == humane.OutcomeFatalHandled {
//	    os.Exit(humane.FatalExitCode)
//	}
//
// Programs that want a process-wide emitter configure the package-level one
// once and use the severity shorthands anywhere:
//
//	err := humane.Configure(cfg)
//
//	humane.Notice("migration finished")
//
// A [Publisher] fans rendered lines out to multiple subscribers, which is
// useful for mirroring diagnostics into a Bubble Tea TUI:
//
//	pub := humane.NewPublisher()
//	e, err := humane.New(cfg, humane.WithOutput(pub))
//
//	sub := pub.Subscribe()
//	go func() {
//	    for line := range sub.C() {
//	        // Deliver line to the TUI.
//	    }
//	}()
package humane
