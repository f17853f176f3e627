package humane_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/humane"
	"go.jacobcolvin.com/humane/report"
	"go.jacobcolvin.com/humane/stringtest"
)

// newTestEmitter builds an emitter writing plain text to a buffer, with
// debug output enabled unless cfg says otherwise.
func newTestEmitter(t *testing.T, cfg *humane.Config, opts ...humane.Option) (*humane.Emitter, *bytes.Buffer) {
	t.Helper()

	if cfg == nil {
		cfg = humane.NewConfig()
		cfg.DebugEnabled = true
	}

	cfg.Color = humane.ColorNever

	var buf bytes.Buffer

	e, err := humane.New(cfg, append([]humane.Option{humane.WithOutput(&buf)}, opts...)...)
	require.NoError(t, err)

	return e, &buf
}

func TestEmit(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		severity humane.Severity
		text     string
		want     string
	}{
		"warning": {
			severity: humane.SeverityWarning,
			text:     "cache is stale",
			want:     "[WARNING] cache is stale\n",
		},
		"info": {
			severity: humane.SeverityInfo,
			text:     "config loaded",
			want:     "[INFO] config loaded\n",
		},
		"debug": {
			severity: humane.SeverityDebug,
			text:     "retrying in 5s",
			want:     "[DEBUG] retrying in 5s\n",
		},
		"notice": {
			severity: humane.SeverityNotice,
			text:     "migration finished",
			want:     "[NOTICE] migration finished\n",
		},
		"empty text keeps the tag": {
			severity: humane.SeverityInfo,
			text:     "",
			want:     "[INFO] \n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e, buf := newTestEmitter(t, nil)

			res, err := e.Emit(tc.severity, tc.text, nil)
			require.NoError(t, err)

			assert.Equal(t, tc.want, buf.String())
			assert.Equal(t, humane.OutcomeRendered, res.Outcome)
			assert.Equal(t, tc.severity, res.Message.Severity)
			assert.False(t, res.Message.Time.IsZero())
		})
	}
}

func TestEmitDebugGate(t *testing.T) {
	t.Parallel()

	t.Run("suppressed by default", func(t *testing.T) {
		t.Parallel()

		e, buf := newTestEmitter(t, humane.NewConfig())

		res, err := e.Emit(humane.SeverityDebug, "noisy detail", nil)
		require.NoError(t, err)

		assert.Equal(t, humane.OutcomeSuppressed, res.Outcome)
		assert.Empty(t, buf.String())
	})

	t.Run("rendered when enabled", func(t *testing.T) {
		t.Parallel()

		cfg := humane.NewConfig()
		cfg.DebugEnabled = true

		e, buf := newTestEmitter(t, cfg)

		res, err := e.Emit(humane.SeverityDebug, "noisy detail", nil)
		require.NoError(t, err)

		assert.Equal(t, humane.OutcomeRendered, res.Outcome)
		assert.Equal(t, "[DEBUG] noisy detail\n", buf.String())
	})

	t.Run("gate only affects debug", func(t *testing.T) {
		t.Parallel()

		e, buf := newTestEmitter(t, humane.NewConfig())

		require.NoError(t, e.Warning("still rendered"))
		assert.Equal(t, "[WARNING] still rendered\n", buf.String())
	})
}

func TestEmitShorthands(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		emit func(*humane.Emitter) error
		want string
	}{
		"warning": {
			emit: func(e *humane.Emitter) error { return e.Warning("low disk") },
			want: "[WARNING] low disk\n",
		},
		"info": {
			emit: func(e *humane.Emitter) error { return e.Info("ready") },
			want: "[INFO] ready\n",
		},
		"debug": {
			emit: func(e *humane.Emitter) error { return e.Debug("verbose") },
			want: "[DEBUG] verbose\n",
		},
		"notice": {
			emit: func(e *humane.Emitter) error { return e.Notice("heads up") },
			want: "[NOTICE] heads up\n",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e, buf := newTestEmitter(t, nil)

			require.NoError(t, tc.emit(e))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestEmitColor(t *testing.T) {
	t.Parallel()

	t.Run("always colors non-terminal sinks", func(t *testing.T) {
		t.Parallel()

		cfg := humane.NewConfig()
		cfg.Color = humane.ColorAlways

		var buf bytes.Buffer

		e, err := humane.New(cfg, humane.WithOutput(&buf))
		require.NoError(t, err)

		require.NoError(t, e.Warning("low disk"))

		out := buf.String()
		assert.Contains(t, out, "\x1b[33m", "expected the default warning yellow")
		assert.Equal(t, "[WARNING] low disk\n", stringtest.StripANSI(out))
	})

	t.Run("auto disables color for non-terminal sinks", func(t *testing.T) {
		t.Parallel()

		cfg := humane.NewConfig()
		cfg.Color = humane.ColorAuto

		var buf bytes.Buffer

		e, err := humane.New(cfg, humane.WithOutput(&buf))
		require.NoError(t, err)

		require.NoError(t, e.Warning("low disk"))
		assert.Equal(t, "[WARNING] low disk\n", buf.String())
	})

	t.Run("custom palette replaces defaults", func(t *testing.T) {
		t.Parallel()

		cfg := humane.NewConfig()
		cfg.Color = humane.ColorAlways
		cfg.Palette = map[string]string{"notice": "hi-magenta"}

		var buf bytes.Buffer

		e, err := humane.New(cfg, humane.WithOutput(&buf))
		require.NoError(t, err)

		// The palette names only notice, so warning renders plain.
		require.NoError(t, e.Warning("plain now"))
		assert.Equal(t, "[WARNING] plain now\n", buf.String())

		buf.Reset()

		require.NoError(t, e.Notice("bright"))
		assert.Contains(t, buf.String(), "\x1b[")
		assert.Equal(t, "[NOTICE] bright\n", stringtest.StripANSI(buf.String()))
	})

	t.Run("empty token renders plain", func(t *testing.T) {
		t.Parallel()

		cfg := humane.NewConfig()
		cfg.Color = humane.ColorAlways
		cfg.Palette = map[string]string{"warning": ""}

		var buf bytes.Buffer

		e, err := humane.New(cfg, humane.WithOutput(&buf))
		require.NoError(t, err)

		require.NoError(t, e.Warning("plain"))
		assert.Equal(t, "[WARNING] plain\n", buf.String())
	})
}

func TestEmitSinkError(t *testing.T) {
	t.Parallel()

	cfg := humane.NewConfig()
	cfg.Color = humane.ColorNever

	e, err := humane.New(cfg, humane.WithOutput(errWriter{}))
	require.NoError(t, err)

	res, err := e.Emit(humane.SeverityWarning, "lost", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, humane.ErrSinkWrite)

	// The result still reports the attempted render, not a suppression.
	assert.Equal(t, humane.OutcomeRendered, res.Outcome)
	assert.Equal(t, "lost", res.Message.Text)
	assert.Equal(t, humane.SeverityWarning, res.Message.Severity)
	assert.False(t, res.Message.Time.IsZero())
}

func TestEmitFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg := humane.NewConfig()
	cfg.ReportDir = dir
	cfg.ReportURL = "https://github.com/example/app/issues"

	e, buf := newTestEmitter(t, cfg)

	res, err := e.Emit(humane.SeverityFatal, "disk full", map[string]string{"module": "storage"})
	require.NoError(t, err)

	assert.Equal(t, humane.OutcomeFatalHandled, res.Outcome)
	require.NotNil(t, res.Report)
	assert.Equal(t, "FATAL", res.Report.Severity)
	assert.NotEmpty(t, res.Report.ID)
	assert.Equal(t, filepath.Join(dir, "crash-"+res.Report.ID+".log"), res.Report.Path)

	data, err := os.ReadFile(res.Report.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Report.String(), string(data))
	assert.Contains(t, string(data), "Message: disk full")
	assert.Contains(t, string(data), "module: storage")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[FATAL] disk full\n"), "fatal line must come first")
	assert.Contains(t, out, "https://github.com/example/app/issues")
	assert.Contains(t, out, res.Report.Path)
	assert.NotContains(t, out, "Report-Id:", "persisted artifacts are not dumped to the sink")

	assert.Contains(t, res.Instruction, res.Report.Path)
}

func TestEmitFatalWithoutDir(t *testing.T) {
	t.Parallel()

	e, buf := newTestEmitter(t, humane.NewConfig())

	res, err := e.Fatal("boom")
	require.NoError(t, err)

	assert.Equal(t, humane.OutcomeFatalHandled, res.Outcome)
	require.NotNil(t, res.Report)
	assert.Empty(t, res.Report.Path)

	// The instruction points at the console output, so the full report must
	// precede it there.
	out := buf.String()
	fatalIdx := strings.Index(out, "[FATAL] boom")
	reportIdx := strings.Index(out, "Report-Id: "+res.Report.ID)
	instructionIdx := strings.Index(out, "the console output above")

	require.GreaterOrEqual(t, fatalIdx, 0)
	require.Greater(t, reportIdx, fatalIdx)
	require.Greater(t, instructionIdx, reportIdx)

	assert.Contains(t, res.Instruction, "the console output above")
}

func TestEmitFatalPersistError(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := humane.NewConfig()
	cfg.ReportDir = blocker

	e, buf := newTestEmitter(t, cfg)

	res, err := e.Fatal("boom")
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrPersist)

	// The report survives the failed persist.
	assert.Equal(t, humane.OutcomeFatalHandled, res.Outcome)
	require.NotNil(t, res.Report)
	assert.Empty(t, res.Report.Path)

	out := buf.String()
	assert.Contains(t, out, "Report-Id: "+res.Report.ID)
	assert.Contains(t, out, "the console output above")
}

func TestEmitFatalSinkError(t *testing.T) {
	t.Parallel()

	cfg := humane.NewConfig()
	cfg.Color = humane.ColorNever

	e, err := humane.New(cfg, humane.WithOutput(errWriter{}))
	require.NoError(t, err)

	res, err := e.Fatal("boom")
	require.Error(t, err)
	assert.ErrorIs(t, err, humane.ErrSinkWrite)

	// Crash handling completes even when every write fails.
	assert.Equal(t, humane.OutcomeFatalHandled, res.Outcome)
	require.NotNil(t, res.Report)
	assert.Equal(t, "boom", res.Report.Text)
	assert.NotEmpty(t, res.Instruction)
}

func TestEmitFatalFrames(t *testing.T) {
	t.Parallel()

	source := []report.Frame{{Function: "source.frame", Location: "s.go:1"}}

	e, _ := newTestEmitter(t, nil, humane.WithFrameSource(func() []report.Frame {
		return source
	}))

	t.Run("frame source fills in", func(t *testing.T) {
		res, err := e.Fatal("boom")
		require.NoError(t, err)
		assert.Equal(t, source, res.Report.Frames)
	})

	t.Run("explicit frames win", func(t *testing.T) {
		explicit := report.Frame{Function: "explicit.frame", Location: "e.go:2"}

		res, err := e.Fatal("boom", explicit)
		require.NoError(t, err)
		assert.Equal(t, []report.Frame{explicit}, res.Report.Frames)
	})
}

func TestEmitFatalUniqueReports(t *testing.T) {
	t.Parallel()

	e, _ := newTestEmitter(t, nil)

	seen := map[string]bool{}

	for range 5 {
		res, err := e.Fatal("boom")
		require.NoError(t, err)
		assert.False(t, seen[res.Report.ID], "duplicate report ID %s", res.Report.ID)

		seen[res.Report.ID] = true
	}
}

func TestEmitMessageTime(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 11, 3, 14, 9, 30, 0, time.UTC)

	e, _ := newTestEmitter(t, nil, humane.WithNow(func() time.Time { return fixed }))

	t.Run("clock stamps messages", func(t *testing.T) {
		res, err := e.Emit(humane.SeverityInfo, "hello", nil)
		require.NoError(t, err)
		assert.True(t, res.Message.Time.Equal(fixed))
	})

	t.Run("caller time preserved", func(t *testing.T) {
		at := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)

		res, err := e.EmitMessage(humane.Message{
			Time:     at,
			Severity: humane.SeverityFatal,
			Text:     "boom",
		})
		require.NoError(t, err)
		assert.True(t, res.Message.Time.Equal(at))
		assert.True(t, res.Report.Time.Equal(at))
	})
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	tcs := map[string]func(*humane.Config){
		"bad color mode": func(cfg *humane.Config) {
			cfg.Color = "sometimes"
		},
		"bad palette severity": func(cfg *humane.Config) {
			cfg.Palette = map[string]string{"verbose": "red"}
		},
		"bad palette token": func(cfg *humane.Config) {
			cfg.Palette = map[string]string{"info": "chartreuse"}
		},
		"bad instruction template": func(cfg *humane.Config) {
			cfg.InstructionTemplate = "{{nope}}"
		},
	}

	for name, mutate := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := humane.NewConfig()
			mutate(cfg)

			_, err := humane.New(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, humane.ErrInvalidConfig)
		})
	}
}

func TestPackageLevelEmitter(t *testing.T) {
	// Exercises the process-wide default emitter, so no t.Parallel.
	_, err := humane.Emit(humane.SeverityInfo, "too early", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, humane.ErrNotConfigured)

	assert.ErrorIs(t, humane.Warning("too early"), humane.ErrNotConfigured)
	assert.Nil(t, humane.Default())

	cfg := humane.NewConfig()
	cfg.Color = humane.ColorNever

	var buf bytes.Buffer

	require.NoError(t, humane.Configure(cfg, humane.WithOutput(&buf)))
	require.NotNil(t, humane.Default())

	require.NoError(t, humane.Info("hello"))
	require.NoError(t, humane.Debug("gated off"))
	require.NoError(t, humane.Notice("notable"))

	assert.Equal(t, stringtest.JoinLF(
		"[INFO] hello",
		"[NOTICE] notable",
		"",
	), buf.String())

	res, err := humane.Fatal("boom")
	require.NoError(t, err)
	assert.Equal(t, humane.OutcomeFatalHandled, res.Outcome)
	assert.Contains(t, buf.String(), "Report-Id: "+res.Report.ID)
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink closed")
}
